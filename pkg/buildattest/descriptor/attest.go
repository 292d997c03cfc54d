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
	"strings"

	"github.com/containersec/buildattest/pkg/buildattest/constants"
)

// FillAttestorProjectIDItems fills the attestor project dropdown. The
// attestor may live in a different project than the container image, so
// this is a separate field with the same candidate set as the project ID.
func FillAttestorProjectIDItems(ctx context.Context, supplier ListerSupplier, credentialsID, attestorProjectID string) SelectableList {
	if credentialsID == "" {
		return Sentinel(MsgProjectCredentialIDRequired)
	}
	return fillWithLister(supplier,
		func(l Lister) ([]string, error) { return l.ListProjects(ctx) },
		attestorProjectID,
		func(err error) string { return fmt.Sprintf(FmtProjectIDFillError, err) })
}

// CheckAttestorProjectID validates that the credential can see the attestor
// project.
func CheckAttestorProjectID(ctx context.Context, supplier ListerSupplier, credentialsID, attestorProjectID string) Result {
	return ValidateRequiredFields(
		[]string{credentialsID, attestorProjectID},
		[]string{MsgProjectCredentialIDRequired, MsgAttestorProjectIDRequired},
		func() Result {
			return validateWithLister(supplier, func(l Lister) Result {
				projects, err := l.ListProjects(ctx)
				if err != nil {
					return Errorf(FmtProjectIDVerificationError, err)
				}
				if !contains(projects, attestorProjectID) {
					return Error(MsgProjectIDNotUnderCredential)
				}
				return OK()
			})
		})
}

// FillAttestorIDItems fills the attestor dropdown under the attestor
// project. Prerequisites are checked in order: a missing credential wins
// over a missing project, and no remote call is made for either sentinel.
func FillAttestorIDItems(ctx context.Context, supplier ListerSupplier, credentialsID, attestorProjectID, attestorID string) SelectableList {
	if credentialsID == "" {
		return Sentinel(MsgProjectCredentialIDRequired)
	}
	if attestorProjectID == "" {
		return Sentinel(MsgAttestorIDProjectIDRequired)
	}
	return fillWithLister(supplier,
		func(l Lister) ([]string, error) { return l.ListAttestors(ctx, attestorProjectID) },
		attestorID,
		func(err error) string { return fmt.Sprintf(FmtAttestorIDFillError, err) })
}

// CheckAttestorID validates that the attestor exists under the attestor
// project.
func CheckAttestorID(ctx context.Context, supplier ListerSupplier, credentialsID, attestorProjectID, attestorID string) Result {
	return ValidateRequiredFields(
		[]string{credentialsID, attestorProjectID, attestorID},
		[]string{MsgProjectCredentialIDRequired, MsgAttestorIDProjectIDRequired, MsgAttestorIDRequired},
		func() Result {
			return validateWithLister(supplier, func(l Lister) Result {
				attestors, err := l.ListAttestors(ctx, attestorProjectID)
				if err != nil {
					return Errorf(FmtAttestorIDVerificationError, err)
				}
				if !contains(attestors, attestorID) {
					return Error(MsgAttestorIDNotUnderProject)
				}
				return OK()
			})
		})
}

// FillPublicKeyIDItems fills the public key dropdown for an attestor. Only
// Cloud KMS shaped key IDs are offered as candidates; see EligibleKeyID.
func FillPublicKeyIDItems(ctx context.Context, supplier ListerSupplier, credentialsID, attestorProjectID, attestorID, publicKeyID string) SelectableList {
	if credentialsID == "" {
		return Sentinel(MsgProjectCredentialIDRequired)
	}
	if attestorProjectID == "" {
		return Sentinel(MsgPublicKeyIDProjectIDRequired)
	}
	if attestorID == "" {
		return Sentinel(MsgPublicKeyIDAttestorIDRequired)
	}
	return fillWithLister(supplier,
		func(l Lister) ([]string, error) {
			keys, err := l.ListAttestorKeys(ctx, attestorProjectID, attestorID)
			if err != nil {
				return nil, err
			}
			eligible := []string{}
			for _, k := range keys {
				if EligibleKeyID(k) {
					eligible = append(eligible, k)
				}
			}
			return eligible, nil
		},
		publicKeyID,
		func(err error) string { return fmt.Sprintf(FmtPublicKeyIDFillError, err) })
}

// CheckPublicKeyID validates that the key is registered for the attestor.
// Membership is checked against the attestor's full key set, not just the
// eligible candidates, so a hand-entered non-KMS key still reports
// not-for-attestor rather than a listing failure.
func CheckPublicKeyID(ctx context.Context, supplier ListerSupplier, credentialsID, attestorProjectID, attestorID, publicKeyID string) Result {
	return ValidateRequiredFields(
		[]string{credentialsID, attestorProjectID, attestorID, publicKeyID},
		[]string{MsgProjectCredentialIDRequired, MsgPublicKeyIDProjectIDRequired, MsgPublicKeyIDAttestorIDRequired, MsgPublicKeyIDRequired},
		func() Result {
			return validateWithLister(supplier, func(l Lister) Result {
				keys, err := l.ListAttestorKeys(ctx, attestorProjectID, attestorID)
				if err != nil {
					return Errorf(FmtPublicKeyIDFillError, err)
				}
				if !contains(keys, publicKeyID) {
					return Error(MsgPublicKeyIDNotForAttestor)
				}
				return OK()
			})
		})
}

// EligibleKeyID reports whether a public key ID names a Cloud KMS key
// version the signing stage can use: it must contain "projects/" and split
// into exactly the expected number of path segments.
func EligibleKeyID(id string) bool {
	return strings.Contains(id, "projects/") &&
		len(strings.Split(id, "/")) == constants.PublicKeyIDElements
}
