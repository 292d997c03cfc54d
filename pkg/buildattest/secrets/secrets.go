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

// Package secrets is the credential store collaborator: it resolves a
// credentials ID to a Google service account credential. Credentials are
// referenced by ID in the build configuration and never copied into it.
package secrets

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/containersec/buildattest/pkg/buildattest/constants"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const keySuffix = ".json"

// Credential is a resolved service account credential, scoped for the
// container security services.
type Credential struct {
	ID          string
	ProjectID   string
	JSON        []byte
	TokenSource oauth2.TokenSource
}

// Fetcher is the function used to resolve a credentials ID.
type Fetcher func(ctx context.Context, credentialsID string) (*Credential, error)

// Store resolves credential IDs against a directory of service account key
// files, one <id>.json per credential.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Fetch resolves a credentials ID to a credential. A missing key file and
// an unparseable one are reported distinctly.
func (s *Store) Fetch(ctx context.Context, credentialsID string) (*Credential, error) {
	if credentialsID == "" {
		return nil, fmt.Errorf("a credentials ID is required")
	}
	path := filepath.Join(s.Dir, credentialsID+keySuffix)
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to retrieve credentials %q", credentialsID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read credentials %q", credentialsID)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, constants.Scopes...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse credentials %q", credentialsID)
	}
	return &Credential{
		ID:          credentialsID,
		ProjectID:   creds.ProjectID,
		JSON:        data,
		TokenSource: creds.TokenSource,
	}, nil
}

// List enumerates the credential IDs available in the store.
func (s *Store) List() ([]string, error) {
	entries, err := ioutil.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list credentials in %s", s.Dir)
	}
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), keySuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), keySuffix))
	}
	return ids, nil
}

// Lookup reports whether the credentials ID resolves in the store.
func (s *Store) Lookup(credentialsID string) error {
	_, err := s.Fetch(context.Background(), credentialsID)
	return err
}

// Authenticate forces a token refresh with the resolved credential. It
// distinguishes a credential that resolves but cannot produce a usable
// token (bad key, revoked grant) from a store miss.
func (s *Store) Authenticate(ctx context.Context, credentialsID string) error {
	cred, err := s.Fetch(ctx, credentialsID)
	if err != nil {
		return err
	}
	if _, err := cred.TokenSource.Token(); err != nil {
		return errors.Wrapf(err, "credentials %q failed to authenticate", credentialsID)
	}
	return nil
}
