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

// Package descriptor implements the configuration-time operations behind
// the build step's dependent fields: filling selection dropdowns and
// validating values as the user works through
// credential -> project -> attestor -> public key.
package descriptor

import "context"

// Lister enumerates the remote candidates for the dependent fields. It is
// typically backed by an authenticated client factory.
type Lister interface {
	// ListProjects lists the project IDs visible to the credential.
	ListProjects(ctx context.Context) ([]string, error)
	// ListAttestors lists attestor IDs under a project.
	ListAttestors(ctx context.Context, projectID string) ([]string, error)
	// ListAttestorKeys lists the public key IDs registered for an attestor.
	// An absent attestor is an error, distinct from zero keys.
	ListAttestorKeys(ctx context.Context, projectID, attestorID string) ([]string, error)
}

// ListerSupplier defers client construction until prerequisites are known
// to be present, so that no transport is built for an incomplete
// configuration. It fails when the credential cannot produce an
// authenticated client.
type ListerSupplier func() (Lister, error)

// CredentialChecker validates that a credentials ID resolves and can
// authenticate. Implemented by the credential store.
type CredentialChecker interface {
	// Lookup resolves the credentials ID in the store.
	Lookup(credentialsID string) error
	// Authenticate forces a token refresh with the resolved credential.
	Authenticate(ctx context.Context, credentialsID string) error
}

// validateWithLister obtains a Lister from the supplier and applies the
// rest of a check to it. A supplier failure is recovered into an error
// result carrying the underlying text, never propagated as a Go error.
func validateWithLister(supplier ListerSupplier, check func(Lister) Result) Result {
	lister, err := supplier()
	if err != nil {
		return Error(err.Error())
	}
	return check(lister)
}

// fillWithLister is the shared shape of a fill operation once all
// prerequisites are present: build the client, list candidates, and select.
// Both client construction failure and listing failure collapse into a
// sentinel list; failMessage renders the listing failure.
func fillWithLister(supplier ListerSupplier, list func(Lister) ([]string, error), current string, failMessage func(error) string) SelectableList {
	lister, err := supplier()
	if err != nil {
		return Sentinel(err.Error())
	}
	candidates, err := list(lister)
	if err != nil {
		return Sentinel(failMessage(err))
	}
	result := NewSelectableList()
	for _, c := range candidates {
		result = result.Add(c)
	}
	SelectOption(result, current)
	return result
}
