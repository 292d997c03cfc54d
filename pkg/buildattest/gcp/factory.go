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
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// ClientFactory builds the service clients for one credential. Clients are
// constructed on first use and cached, so an execution that never touches a
// service never dials it. The factory is not safe for concurrent use; each
// build execution owns its own.
type ClientFactory struct {
	cred *secrets.Credential
	opts []option.ClientOption

	resourceManager ResourceManagerClient
	binAuthz        BinAuthzClient
	kms             KMSClient
	analysis        AnalysisClient
	registry        RegistryClient
}

// NewClientFactory wraps a resolved credential. The credential must be
// non-nil; a nil credential is a configuration error, not a remote failure.
func NewClientFactory(cred *secrets.Credential) (*ClientFactory, error) {
	if cred == nil || cred.TokenSource == nil {
		return nil, fmt.Errorf("a resolved credential is required to build clients")
	}
	return &ClientFactory{
		cred: cred,
		opts: []option.ClientOption{option.WithTokenSource(cred.TokenSource)},
	}, nil
}

// FactoryForCredentials resolves credentialsID in the store and wraps it in
// a factory. The error carries the underlying credential or transport text.
func FactoryForCredentials(ctx context.Context, fetch secrets.Fetcher, credentialsID string) (*ClientFactory, error) {
	cred, err := fetch(ctx, credentialsID)
	if err != nil {
		return nil, err
	}
	factory, err := NewClientFactory(cred)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize clients")
	}
	return factory, nil
}

func (f *ClientFactory) ResourceManager(ctx context.Context) (ResourceManagerClient, error) {
	if f.resourceManager == nil {
		c, err := newResourceManagerClient(ctx, f.opts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize resource manager client")
		}
		f.resourceManager = c
	}
	return f.resourceManager, nil
}

func (f *ClientFactory) BinAuthz(ctx context.Context) (BinAuthzClient, error) {
	if f.binAuthz == nil {
		c, err := newBinAuthzClient(ctx, f.opts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize binary authorization client")
		}
		f.binAuthz = c
	}
	return f.binAuthz, nil
}

func (f *ClientFactory) KMS(ctx context.Context) (KMSClient, error) {
	if f.kms == nil {
		c, err := newKMSClient(ctx, f.opts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize key management client")
		}
		f.kms = c
	}
	return f.kms, nil
}

func (f *ClientFactory) Analysis(ctx context.Context) (AnalysisClient, error) {
	if f.analysis == nil {
		c, err := newAnalysisClient(ctx, f.opts...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize container analysis client")
		}
		f.analysis = c
	}
	return f.analysis, nil
}

func (f *ClientFactory) Registry() RegistryClient {
	if f.registry == nil {
		f.registry = newRegistryClient(f.cred)
	}
	return f.registry
}

// ListProjects implements the descriptor Lister view of the factory.
func (f *ClientFactory) ListProjects(ctx context.Context) ([]string, error) {
	c, err := f.ResourceManager(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListProjects(ctx)
}

// ListAttestors implements the descriptor Lister view of the factory.
func (f *ClientFactory) ListAttestors(ctx context.Context, projectID string) ([]string, error) {
	c, err := f.BinAuthz(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListAttestors(ctx, projectID)
}

// ListAttestorKeys implements the descriptor Lister view of the factory.
func (f *ClientFactory) ListAttestorKeys(ctx context.Context, projectID, attestorID string) ([]string, error) {
	c, err := f.BinAuthz(ctx)
	if err != nil {
		return nil, err
	}
	attestor, err := c.GetAttestor(ctx, projectID, attestorID)
	if err != nil {
		return nil, err
	}
	return attestor.PublicKeyIDs, nil
}
