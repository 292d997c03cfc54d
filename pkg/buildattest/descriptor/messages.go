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

// User-facing status messages. The text itself is a presentation concern,
// but which message is chosen for which condition, and in what order the
// conditions are checked, is part of the validation contract.
const (
	MsgNoCredential             = "A credential is required"
	MsgCredentialAuthFailed     = "The credential failed to authenticate. Check that the service account key is valid and not revoked"
	MsgProjectCredentialIDRequired = "A valid credential ID is required"
	MsgProjectIDRequired        = "A project ID is required"
	MsgProjectIDNotUnderCredential = "The project ID was not found under the given credential"

	MsgAttestorProjectIDRequired = "An attestor project ID is required"
	MsgAttestorIDProjectIDRequired = "An attestor project ID is required to select an attestor ID"
	MsgAttestorIDRequired        = "An attestor ID is required"
	MsgAttestorIDNotUnderProject = "The attestor was not found under the given project"

	MsgPublicKeyIDProjectIDRequired  = "An attestor project ID is required to select a public key ID"
	MsgPublicKeyIDAttestorIDRequired = "An attestor ID is required to select a public key ID"
	MsgPublicKeyIDRequired           = "A public key ID is required"
	MsgPublicKeyIDNotForAttestor     = "The public key is not registered for the given attestor"

	// Formats carrying the underlying remote error text.
	FmtProjectIDFillError          = "Error retrieving project IDs: %v"
	FmtProjectIDVerificationError  = "Error verifying project ID: %v"
	FmtAttestorIDFillError         = "Error retrieving attestor IDs: %v"
	FmtAttestorIDVerificationError = "Error verifying attestor ID: %v"
	FmtPublicKeyIDFillError        = "Error retrieving public key IDs: %v"
)
