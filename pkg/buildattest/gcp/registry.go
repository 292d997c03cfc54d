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

package gcp

import (
	"context"
	"fmt"

	"github.com/containersec/buildattest/pkg/buildattest/secrets"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/google"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/pkg/errors"
)

type registryClient struct {
	cred *secrets.Credential
}

func newRegistryClient(cred *secrets.Credential) RegistryClient {
	return &registryClient{cred: cred}
}

// ResolveTag fetches the manifest digest currently bound to repo:tag.
func (c *registryClient) ResolveTag(ctx context.Context, repositoryURI, tag string) (string, error) {
	ref, err := name.NewTag(fmt.Sprintf("%s:%s", repositoryURI, tag), name.StrictValidation)
	if err != nil {
		return "", errors.Wrapf(err, "invalid tag reference %s:%s", repositoryURI, tag)
	}
	auth, err := c.authenticator()
	if err != nil {
		return "", err
	}
	img, err := remote.Image(ref, remote.WithAuth(auth))
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch image %s", ref)
	}
	digest, err := img.Digest()
	if err != nil {
		return "", errors.Wrapf(err, "failed to get digest for %s", ref)
	}
	return digest.String(), nil
}

func (c *registryClient) authenticator() (authn.Authenticator, error) {
	if c.cred != nil && len(c.cred.JSON) > 0 {
		// GCR accepts the service account key as a _json_key basic login.
		return &authn.Basic{Username: "_json_key", Password: string(c.cred.JSON)}, nil
	}
	auth, err := google.NewEnvAuthenticator()
	if err != nil {
		return nil, errors.Wrap(err, "failed to authenticate to the registry")
	}
	return auth, nil
}
