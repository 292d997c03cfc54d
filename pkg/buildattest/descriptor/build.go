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

package descriptor

import (
	"context"
	"fmt"
)

// FillCredentialsIDItems lists the credential IDs known to the store, with
// a leading empty value so the user can leave the field unset.
func FillCredentialsIDItems(ids []string, current string) SelectableList {
	result := NewSelectableList()
	for _, id := range ids {
		result = result.Add(id)
	}
	SelectOption(result, current)
	return result
}

// CheckCredentialsID validates that the credentials ID resolves in the
// store and can produce a usable token. A store miss surfaces the lookup
// error text; a refresh failure surfaces the fixed auth-failed message.
func CheckCredentialsID(ctx context.Context, checker CredentialChecker, credentialsID string) Result {
	return ValidateRequiredFields(
		[]string{credentialsID},
		[]string{MsgNoCredential},
		func() Result {
			if err := checker.Lookup(credentialsID); err != nil {
				return Error(err.Error())
			}
			if err := checker.Authenticate(ctx, credentialsID); err != nil {
				return Error(MsgCredentialAuthFailed)
			}
			return OK()
		})
}

// FillProjectIDItems fills the project dropdown under a credential,
// selecting projectID or the first non-empty project. Without a credential
// it returns the credential-required sentinel and performs no remote call.
func FillProjectIDItems(ctx context.Context, supplier ListerSupplier, credentialsID, projectID string) SelectableList {
	if credentialsID == "" {
		return Sentinel(MsgProjectCredentialIDRequired)
	}
	return fillWithLister(supplier,
		func(l Lister) ([]string, error) { return l.ListProjects(ctx) },
		projectID,
		func(err error) string { return fmt.Sprintf(FmtProjectIDFillError, err) })
}

// CheckProjectID validates that the credential can see the project.
// Listing failure and project-absent are reported distinctly.
func CheckProjectID(ctx context.Context, supplier ListerSupplier, credentialsID, projectID string) Result {
	return ValidateRequiredFields(
		[]string{credentialsID, projectID},
		[]string{MsgProjectCredentialIDRequired, MsgProjectIDRequired},
		func() Result {
			return validateWithLister(supplier, func(l Lister) Result {
				projects, err := l.ListProjects(ctx)
				if err != nil {
					return Errorf(FmtProjectIDVerificationError, err)
				}
				if !contains(projects, projectID) {
					return Error(MsgProjectIDNotUnderCredential)
				}
				return OK()
			})
		})
}

// FillQualifierTypeItems lists the two container qualifier kinds. The value
// encodes the persisted boolean: "true" is digest, "false" is tag.
func FillQualifierTypeItems() SelectableList {
	return SelectableList{
		{Label: "Digest", Value: "true"},
		{Label: "Tag", Value: "false"},
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
