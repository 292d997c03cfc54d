/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config holds the persisted build-step configuration. The fields
// are owned by the CI host's job definition; a build execution consumes an
// immutable snapshot of them.
package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// AttestStep configures one attestation to create for the resolved
// container image.
type AttestStep struct {
	AttestorProjectID string `yaml:"attestorProjectId"`
	AttestorID        string `yaml:"attestorId"`
	PublicKeyID       string `yaml:"publicKeyId"`
}

// Build configures a container security build: the image to operate on and
// the steps to run against it. QualifierIsDigest selects how
// ContainerQualifier is interpreted: true for a digest (or a digest macro),
// false for a tag.
type Build struct {
	CredentialsID      string       `yaml:"credentialsId"`
	ProjectID          string       `yaml:"projectId"`
	ContainerURI       string       `yaml:"containerUri"`
	ContainerQualifier string       `yaml:"containerQualifier"`
	QualifierIsDigest  bool         `yaml:"containerQualifierType"`
	Steps              []AttestStep `yaml:"steps"`
}

// Load reads a build configuration from a YAML file.
func Load(path string) (*Build, error) {
	contents, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read build config %s", path)
	}
	build := &Build{QualifierIsDigest: true}
	if err := yaml.UnmarshalStrict(contents, build); err != nil {
		return nil, errors.Wrapf(err, "failed to parse build config %s", path)
	}
	return build, nil
}
