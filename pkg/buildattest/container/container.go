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

// Package container validates the configured container reference and
// resolves it to a canonical repo@sha256:... reference at execution time.
package container

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/containersec/buildattest/pkg/buildattest/constants"
	"github.com/containersec/buildattest/pkg/buildattest/descriptor"
	"github.com/pkg/errors"
)

var (
	digestMacroPattern = regexp.MustCompile(constants.ContainerDigestMacroPattern)
	digestPattern      = regexp.MustCompile(constants.ContainerDigestPattern)
	tagPattern         = regexp.MustCompile(constants.ContainerTagPattern)
)

// Status messages for container reference checks.
const (
	MsgContainerURIRequired          = "A container URI is required"
	MsgContainerURIProjectIDRequired = "A project ID is required to validate the container URI"
	MsgContainerQualifierRequired    = "A container qualifier is required"
	MsgContainerTagCredentialIDRequired = "A credential ID is required to resolve a container tag"
	MsgContainerDigestMacroWarning   = "The digest is a build variable macro; it is expanded at execution time and may not hold a valid digest"

	// FmtContainerPatternNoMatch carries the offending field kind and the
	// pattern that was required, to aid debugging.
	FmtContainerPatternNoMatch = "The container %s does not match the required pattern %q"
)

// TagResolver looks up the digest currently bound to a repository tag.
type TagResolver interface {
	ResolveTag(ctx context.Context, repositoryURI, tag string) (string, error)
}

// CheckURI validates the repository URI against the project-scoped GCR
// pattern. The URI is required before the project ID, so an empty URI wins.
func CheckURI(projectID, containerURI string) descriptor.Result {
	return descriptor.ValidateRequiredFields(
		[]string{containerURI, projectID},
		[]string{MsgContainerURIRequired, MsgContainerURIProjectIDRequired},
		func() descriptor.Result {
			uriPattern := fmt.Sprintf(constants.ContainerURIPatternTemplate, projectID)
			if !regexp.MustCompile(uriPattern).MatchString(containerURI) {
				return descriptor.Errorf(FmtContainerPatternNoMatch, "URI", uriPattern)
			}
			return descriptor.OK()
		})
}

// CheckQualifier validates the digest or tag held in the qualifier field.
// A digest-kind macro such as "$DIGEST" is accepted with a warning since
// its value is only known at execution time. A tag-kind qualifier is first
// checked against the tag pattern and then requires a credential, because
// tag resolution needs a live registry lookup; the two failures carry
// distinct messages and are checked in that order.
func CheckQualifier(credentialsID, qualifier string, isDigest bool) descriptor.Result {
	if qualifier == "" {
		return descriptor.Error(MsgContainerQualifierRequired)
	}
	if isDigest {
		if digestMacroPattern.MatchString(qualifier) {
			return descriptor.Warning(MsgContainerDigestMacroWarning)
		}
		if !digestPattern.MatchString(qualifier) {
			return descriptor.Errorf(FmtContainerPatternNoMatch, "digest", constants.ContainerDigestPattern)
		}
		return descriptor.OK()
	}
	if !tagPattern.MatchString(qualifier) {
		return descriptor.Errorf(FmtContainerPatternNoMatch, "tag", constants.ContainerTagPattern)
	}
	if credentialsID == "" {
		return descriptor.Error(MsgContainerTagCredentialIDRequired)
	}
	return descriptor.OK()
}

// Resolve turns the configured (repositoryUri, qualifier) pair into a
// canonical reference. Digest qualifiers are macro-expanded against the run
// environment; tag qualifiers are resolved through the registry. The result
// is computed once per build execution and not persisted.
func Resolve(ctx context.Context, repositoryURI, qualifier string, isDigest bool, env func(string) string, registry TagResolver) (string, error) {
	var digest string
	if isDigest {
		digest = ExpandMacro(qualifier, env)
	} else {
		var err error
		digest, err = registry.ResolveTag(ctx, repositoryURI, qualifier)
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve tag %q for %s", qualifier, repositoryURI)
		}
	}
	return fmt.Sprintf("%s@%s", repositoryURI, digest), nil
}

// ExpandMacro substitutes $VAR and ${VAR} references in template using the
// run environment. A nil env falls back to the process environment.
func ExpandMacro(template string, env func(string) string) string {
	if env == nil {
		env = os.Getenv
	}
	return os.Expand(template, env)
}
