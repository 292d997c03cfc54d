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

// Package gcp builds the authenticated service clients a build execution
// needs: resource manager, binary authorization, Cloud KMS, container
// analysis, and the container registry.
package gcp

import "context"

// ResourceManagerClient lists the projects visible to the credential.
type ResourceManagerClient interface {
	ListProjects(ctx context.Context) ([]string, error)
}

// Attestor is a Binary Authorization attestor with its registered public
// key IDs.
type Attestor struct {
	// ID is the short attestor ID, without the projects/... prefix.
	ID string
	// PublicKeyIDs are the key IDs registered on the attestor note, in the
	// order the service returned them. No eligibility filtering is applied.
	PublicKeyIDs []string
}

// BinAuthzClient is the policy-object service: it enumerates attestors and
// produces the canonical attestation payload for an image.
type BinAuthzClient interface {
	ListAttestors(ctx context.Context, projectID string) ([]string, error)
	GetAttestor(ctx context.Context, projectID, attestorID string) (*Attestor, error)
	// GenerateAttestationPayload returns the canonical payload bytes for a
	// canonical image reference. Callers treat the bytes as opaque.
	GenerateAttestationPayload(canonicalRef string) ([]byte, error)
}

// KMSClient is the key management service used for asymmetric signing.
type KMSClient interface {
	// AsymmetricSign signs payload with the key version named by key and
	// returns the base64 encoded signature.
	AsymmetricSign(ctx context.Context, key KeyPath, payload []byte) (string, error)
}

// Attestation describes a submitted attestation occurrence.
type Attestation struct {
	// Name is the server-assigned occurrence name.
	Name string
	// SignedAttestation is the service's rendering of the stored signed
	// attestation content.
	SignedAttestation string
}

// Vulnerability is a package vulnerability the analysis service knows for
// an image.
type Vulnerability struct {
	Severity        Severity
	HasFixAvailable bool
	CVE             string
}

// AnalysisClient is the analysis/occurrence service.
type AnalysisClient interface {
	CreateAttestation(ctx context.Context, req *AttestationRequest) (*Attestation, error)
	Vulnerabilities(ctx context.Context, canonicalRef string) ([]Vulnerability, error)
}

// RegistryClient resolves repository tags to digests.
type RegistryClient interface {
	ResolveTag(ctx context.Context, repositoryURI, tag string) (string, error)
}
