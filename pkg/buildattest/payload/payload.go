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

// Package payload models the canonical attestation payload for a container
// image, following the simple signing format
// https://github.com/containers/image/blob/master/docs/containers-signature.5.md
package payload

import (
	"encoding/json"

	"github.com/containersec/buildattest/pkg/buildattest/constants"
	"github.com/google/go-containerregistry/pkg/name"
)

// AttestationPayload is the signed-over statement binding a repository
// identity to a manifest digest.
type AttestationPayload struct {
	Critical *Critical         `json:"critical"`
	Optional map[string]string `json:"optional,omitempty"`
}

type Critical struct {
	Identity *Identity `json:"identity"`
	Image    *Image    `json:"image"`
	Type     string    `json:"type"`
}

type Identity struct {
	DockerRef string `json:"docker-reference"`
}

type Image struct {
	DockerDigest string `json:"docker-manifest-digest"`
}

// New builds the payload for a canonical image reference of the form
// repo@sha256:... . The reference must carry a digest; tags are rejected.
func New(image string, optional map[string]string) (*AttestationPayload, error) {
	digest, err := name.NewDigest(image, name.StrictValidation)
	if err != nil {
		return nil, err
	}
	return &AttestationPayload{
		Critical: &Critical{
			Identity: &Identity{DockerRef: digest.Repository.Name()},
			Image:    &Image{DockerDigest: digest.DigestStr()},
			Type:     constants.AttestationPayloadType,
		},
		Optional: optional,
	}, nil
}

// JSON renders the payload to its canonical byte form. Consumers treat the
// result as opaque; only the remote service contract defines its layout.
func (p *AttestationPayload) JSON() ([]byte, error) {
	return json.Marshal(p)
}
