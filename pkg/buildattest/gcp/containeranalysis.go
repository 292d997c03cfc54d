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
	"encoding/base64"
	"fmt"
	"strings"

	ca "cloud.google.com/go/containeranalysis/apiv1beta1"
	"github.com/containersec/buildattest/pkg/buildattest/constants"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	attestationpb "google.golang.org/genproto/googleapis/devtools/containeranalysis/v1beta1/attestation"
	"google.golang.org/genproto/googleapis/devtools/containeranalysis/v1beta1/common"
	"google.golang.org/genproto/googleapis/devtools/containeranalysis/v1beta1/grafeas"
	pkg "google.golang.org/genproto/googleapis/devtools/containeranalysis/v1beta1/package"
	"google.golang.org/genproto/googleapis/devtools/containeranalysis/v1beta1/vulnerability"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const pkgVulnerability = "PACKAGE_VULNERABILITY"

// AttestationRequest carries everything needed to submit one attestation
// occurrence. It is constructed fresh per signing attempt and never mutated
// after submission.
type AttestationRequest struct {
	// ProjectID is the project the occurrence is created under.
	ProjectID string
	// ResourceURI is the canonical image reference with the resource scheme
	// prefix, e.g. https://gcr.io/proj/img@sha256:...
	ResourceURI string
	// AttestorProjectID and NoteID name the attestation note the occurrence
	// attaches to.
	AttestorProjectID string
	NoteID            string
	// Signature is the base64 encoded signature over the payload.
	Signature string
	// PublicKeyID identifies the key version that produced the signature.
	PublicKeyID string
	// EncodedPayload is the base64 encoding of the original payload bytes.
	EncodedPayload string
}

type analysisClient struct {
	client *ca.GrafeasV1Beta1Client
}

func newAnalysisClient(ctx context.Context, opts ...option.ClientOption) (AnalysisClient, error) {
	client, err := ca.NewGrafeasV1Beta1Client(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &analysisClient{client: client}, nil
}

// CreateAttestation submits the attestation occurrence. An already-existing
// occurrence is returned as an error for which IsAlreadyExists reports
// true; callers decide whether that is a success.
func (c *analysisClient) CreateAttestation(ctx context.Context, r *AttestationRequest) (*Attestation, error) {
	serializedPayload, err := base64.StdEncoding.DecodeString(r.EncodedPayload)
	if err != nil {
		return nil, errors.Wrap(err, "attestation payload is not valid base64")
	}
	signature, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "attestation signature is not valid base64")
	}
	occ := &grafeas.Occurrence{
		Resource: &grafeas.Resource{Uri: r.ResourceURI},
		NoteName: fmt.Sprintf("projects/%s/notes/%s", r.AttestorProjectID, r.NoteID),
		Details: &grafeas.Occurrence_Attestation{
			Attestation: &attestationpb.Details{
				Attestation: &attestationpb.Attestation{
					Signature: &attestationpb.Attestation_GenericSignedAttestation{
						GenericSignedAttestation: &attestationpb.GenericSignedAttestation{
							ContentType:       attestationpb.GenericSignedAttestation_SIMPLE_SIGNING_JSON,
							SerializedPayload: serializedPayload,
							Signatures: []*common.Signature{
								{
									PublicKeyId: r.PublicKeyID,
									Signature:   signature,
								},
							},
						},
					},
				},
			},
		},
	}
	req := &grafeas.CreateOccurrenceRequest{
		Occurrence: occ,
		Parent:     fmt.Sprintf("projects/%s", r.ProjectID),
	}
	created, err := c.client.CreateOccurrence(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Attestation{
		Name:              created.GetName(),
		SignedAttestation: created.GetAttestation().GetAttestation().GetGenericSignedAttestation().String(),
	}, nil
}

// Vulnerabilities lists the package vulnerabilities known for an image.
func (c *analysisClient) Vulnerabilities(ctx context.Context, canonicalRef string) ([]Vulnerability, error) {
	req := &grafeas.ListOccurrencesRequest{
		Filter:   fmt.Sprintf("resourceUrl=%q AND kind=%q", constants.ResourceURLPrefix+canonicalRef, pkgVulnerability),
		PageSize: constants.PageSize,
		Parent:   fmt.Sprintf("projects/%s", projectFromCanonicalRef(canonicalRef)),
	}
	vulnz := []Vulnerability{}
	it := c.client.ListOccurrences(ctx, req)
	for {
		occ, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list vulnerabilities for %s", canonicalRef)
		}
		if v := vulnerabilityFromOccurrence(occ); v != nil {
			vulnz = append(vulnz, *v)
		}
	}
	return vulnz, nil
}

func vulnerabilityFromOccurrence(occ *grafeas.Occurrence) *Vulnerability {
	details := occ.GetVulnerability()
	if details == nil {
		return nil
	}
	return &Vulnerability{
		Severity:        ParseSeverity(vulnerability.Severity_name[int32(details.Severity)]),
		HasFixAvailable: isFixAvailable(details.GetPackageIssue()),
		CVE:             occ.GetNoteName(),
	}
}

func isFixAvailable(issues []*vulnerability.PackageIssue) bool {
	for _, issue := range issues {
		if issue.GetFixedLocation() == nil || issue.GetFixedLocation().GetVersion().Kind == pkg.Version_MAXIMUM {
			return false
		}
	}
	return true
}

func projectFromCanonicalRef(canonicalRef string) string {
	tok := strings.Split(canonicalRef, "/")
	if len(tok) < 2 {
		return ""
	}
	return tok[1]
}

// IsAlreadyExists reports whether a submission failure means the occurrence
// already exists. It prefers the structured gRPC status and falls back to
// matching the conflict text only when no status is attached.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	if s, ok := status.FromError(errors.Cause(err)); ok && s.Code() == codes.AlreadyExists {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "AlreadyExists") || strings.Contains(msg, "409")
}
