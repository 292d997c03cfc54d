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

package constants

const (
	// ResourceURLPrefix is prepended to a canonical image reference when it
	// is submitted as an occurrence resource URI.
	ResourceURLPrefix = "https://"

	// NoteIDSuffix is appended to an attestor ID to form the ID of the
	// attestation note the occurrence is attached to.
	NoteIDSuffix = "-note"

	// PublicKeyIDElements is the number of slash-separated segments in a
	// Cloud KMS backed attestor public key ID:
	// projects/<p>/locations/<l>/keyRings/<r>/cryptoKeys/<k>/cryptoKeyVersions/<v>
	PublicKeyIDElements = 10

	// AttestationPayloadType identifies the simple signing payload format
	// used for Binary Authorization attestations.
	AttestationPayloadType = "Google cloud binauthz container signature"

	// PageSize used when listing remote resources.
	PageSize = 100
)

// ContainerDigestMacroPattern matches a build variable macro such as
// "$IMAGE_DIGEST" that expands to a digest at execution time.
const ContainerDigestMacroPattern = `^\$[a-zA-Z0-9_]+$`

// ContainerDigestPattern matches a literal sha256 content digest.
const ContainerDigestPattern = `^sha256:[a-fA-F0-9]{64}$`

// ContainerTagPattern matches a valid docker image tag.
const ContainerTagPattern = `^[a-zA-Z0-9_][a-zA-Z0-9_.\-]{0,127}$`

// ContainerURIPatternTemplate is the GCR repository pattern scoped to a
// project ID, which is substituted for %s. The tag or digest is omitted.
const ContainerURIPatternTemplate = `^[a-z]*\.?gcr.io/%s/([a-z0-9\-]+[a-z0-9]/)*[a-z0-9\-]+[a-z0-9]$`

// Scopes required by the clients built for user provided service account
// credentials.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/cloudkms",
}
