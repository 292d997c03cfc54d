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

// Package pipeline creates and submits attestations for a resolved
// container image. Each attestation runs through a linear state machine
// with no retries:
//
//	Start -> ClientAcquired -> PayloadGenerated -> Signed -> Submitted
//	      -> Done | AlreadyExists
//
// with Aborted reachable from any state on unrecoverable error.
package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/containersec/buildattest/pkg/buildattest/config"
	"github.com/containersec/buildattest/pkg/buildattest/constants"
	"github.com/containersec/buildattest/pkg/buildattest/gcp"
	"github.com/golang/glog"
)

// State tracks progress through the attestation stages.
type State int

const (
	Start State = iota
	ClientAcquired
	PayloadGenerated
	Signed
	Submitted
	Done
	AlreadyExists
	Aborted
)

func (s State) String() string {
	return [...]string{"Start", "ClientAcquired", "PayloadGenerated", "Signed",
		"Submitted", "Done", "AlreadyExists", "Aborted"}[s]
}

// Outcome is the terminal result of one attestation step. State is Done,
// AlreadyExists, or Aborted; Err is set only when Aborted. FailsBuild
// distinguishes an abort that must fail the surrounding build from one the
// step absorbs (a credential that cannot produce clients degrades the step
// to a logged no-op).
type Outcome struct {
	State      State
	Err        error
	FailsBuild bool
}

// Succeeded reports whether the attestation is in place, whether this run
// created it or a previous one did.
func (o Outcome) Succeeded() bool {
	return o.State == Done || o.State == AlreadyExists
}

// Clients is the slice of the client factory one attestation needs.
type Clients interface {
	BinAuthz(ctx context.Context) (gcp.BinAuthzClient, error)
	KMS(ctx context.Context) (gcp.KMSClient, error)
	Analysis(ctx context.Context) (gcp.AnalysisClient, error)
}

// FactoryFunc builds authenticated clients for a credentials ID.
type FactoryFunc func(ctx context.Context, credentialsID string) (Clients, error)

// AttestStep runs one configured attestation against a canonical image
// reference and writes its diagnostics to out, the build log.
func AttestStep(ctx context.Context, factory FactoryFunc, out io.Writer, build *config.Build, step config.AttestStep, canonicalRef string) Outcome {
	fmt.Fprintf(out, "Creating attestation for %s with attestor %s/%s\n",
		canonicalRef, step.AttestorProjectID, step.AttestorID)

	clients, err := factory(ctx, build.CredentialsID)
	if err != nil {
		// A bad or missing credential degrades this step to a no-op; the
		// surrounding build carries on.
		fmt.Fprintf(out, "Failed to get credentials %q: %v\n", build.CredentialsID, err)
		return Outcome{State: Aborted, Err: err}
	}

	attestation, err := attest(ctx, clients, build.ProjectID, step, canonicalRef)
	if err != nil {
		if gcp.IsAlreadyExists(err) {
			fmt.Fprintf(out, "Attestation already exists: %v\n", err)
			return Outcome{State: AlreadyExists}
		}
		glog.Errorf("failed to create attestation for %s with attestor %s/%s: %v",
			canonicalRef, step.AttestorProjectID, step.AttestorID, err)
		fmt.Fprintf(out, "Failed to create attestation: %v\n", err)
		return Outcome{State: Aborted, Err: err, FailsBuild: true}
	}

	fmt.Fprintln(out, attestation.Name)
	fmt.Fprintln(out, attestation.SignedAttestation)
	return Outcome{State: Done}
}

// attest walks the PayloadGenerated -> Signed -> Submitted stages. Each
// stage is attempted once; the first failure surfaces immediately.
func attest(ctx context.Context, clients Clients, projectID string, step config.AttestStep, canonicalRef string) (*gcp.Attestation, error) {
	key, err := gcp.ParseKeyPath(step.PublicKeyID)
	if err != nil {
		return nil, err
	}

	binAuthz, err := clients.BinAuthz(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := binAuthz.GenerateAttestationPayload(canonicalRef)
	if err != nil {
		return nil, err
	}

	kms, err := clients.KMS(ctx)
	if err != nil {
		return nil, err
	}
	signature, err := kms.AsymmetricSign(ctx, key, payload)
	if err != nil {
		return nil, err
	}

	analysis, err := clients.Analysis(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.CreateAttestation(ctx, &gcp.AttestationRequest{
		ProjectID:         projectID,
		ResourceURI:       constants.ResourceURLPrefix + canonicalRef,
		AttestorProjectID: step.AttestorProjectID,
		NoteID:            step.AttestorID + constants.NoteIDSuffix,
		Signature:         signature,
		PublicKeyID:       step.PublicKeyID,
		EncodedPayload:    base64.StdEncoding.EncodeToString(payload),
	})
}
