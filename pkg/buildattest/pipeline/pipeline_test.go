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
package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/containersec/buildattest/pkg/buildattest/config"
	"github.com/containersec/buildattest/pkg/buildattest/gcp"
	"github.com/containersec/buildattest/pkg/buildattest/testutil"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	testRef   = "gcr.io/my-project/app@sha256:b3f3eccfd27c9864312af3796067e7db28007a1566e1e042c5862eed3ff1b2c8"
	testKeyID = "projects/attestor-project/locations/global/keyRings/ring/cryptoKeys/key/cryptoKeyVersions/1"
)

type fakeClients struct {
	payloadErr error
	signErr    error
	submitErr  error

	signCalls   int
	submitCalls int
	lastKey     gcp.KeyPath
	lastPayload []byte
	lastRequest *gcp.AttestationRequest
}

func (f *fakeClients) BinAuthz(ctx context.Context) (gcp.BinAuthzClient, error) {
	return &fakeBinAuthz{f: f}, nil
}

func (f *fakeClients) KMS(ctx context.Context) (gcp.KMSClient, error) {
	return &fakeKMS{f: f}, nil
}

func (f *fakeClients) Analysis(ctx context.Context) (gcp.AnalysisClient, error) {
	return &fakeAnalysis{f: f}, nil
}

type fakeBinAuthz struct{ f *fakeClients }

func (b *fakeBinAuthz) ListAttestors(ctx context.Context, projectID string) ([]string, error) {
	return nil, fmt.Errorf("not used")
}

func (b *fakeBinAuthz) GetAttestor(ctx context.Context, projectID, attestorID string) (*gcp.Attestor, error) {
	return nil, fmt.Errorf("not used")
}

func (b *fakeBinAuthz) GenerateAttestationPayload(canonicalRef string) ([]byte, error) {
	if b.f.payloadErr != nil {
		return nil, b.f.payloadErr
	}
	return []byte(`{"critical":{"identity":"` + canonicalRef + `"}}`), nil
}

type fakeKMS struct{ f *fakeClients }

func (k *fakeKMS) AsymmetricSign(ctx context.Context, key gcp.KeyPath, payload []byte) (string, error) {
	k.f.signCalls++
	k.f.lastKey = key
	k.f.lastPayload = payload
	if k.f.signErr != nil {
		return "", k.f.signErr
	}
	return base64.StdEncoding.EncodeToString([]byte("signature-over-" + string(payload))), nil
}

type fakeAnalysis struct{ f *fakeClients }

func (a *fakeAnalysis) CreateAttestation(ctx context.Context, req *gcp.AttestationRequest) (*gcp.Attestation, error) {
	a.f.submitCalls++
	a.f.lastRequest = req
	if a.f.submitErr != nil {
		return nil, a.f.submitErr
	}
	return &gcp.Attestation{
		Name:              "projects/my-project/occurrences/abc123",
		SignedAttestation: "serialized_payload: ...",
	}, nil
}

func (a *fakeAnalysis) Vulnerabilities(ctx context.Context, canonicalRef string) ([]gcp.Vulnerability, error) {
	return nil, fmt.Errorf("not used")
}

func factoryFor(clients Clients, err error) FactoryFunc {
	return func(ctx context.Context, credentialsID string) (Clients, error) {
		if err != nil {
			return nil, err
		}
		return clients, nil
	}
}

func testBuild() *config.Build {
	return &config.Build{
		CredentialsID:      "builder-sa",
		ProjectID:          "my-project",
		ContainerURI:       "gcr.io/my-project/app",
		ContainerQualifier: "sha256:b3f3eccfd27c9864312af3796067e7db28007a1566e1e042c5862eed3ff1b2c8",
		QualifierIsDigest:  true,
	}
}

func testStep() config.AttestStep {
	return config.AttestStep{
		AttestorProjectID: "attestor-project",
		AttestorID:        "qa-attestor",
		PublicKeyID:       testKeyID,
	}
}

func TestAttestStepDone(t *testing.T) {
	clients := &fakeClients{}
	out := &bytes.Buffer{}
	outcome := AttestStep(context.Background(), factoryFor(clients, nil), out, testBuild(), testStep(), testRef)

	if outcome.State != Done || !outcome.Succeeded() || outcome.FailsBuild {
		t.Fatalf("got outcome %+v, expected Done", outcome)
	}
	req := clients.lastRequest
	if req == nil {
		t.Fatal("no attestation request submitted")
	}
	if req.ProjectID != "my-project" {
		t.Errorf("occurrence project is %q, expected the build project", req.ProjectID)
	}
	if req.ResourceURI != "https://"+testRef {
		t.Errorf("got resource URI %q", req.ResourceURI)
	}
	if req.AttestorProjectID != "attestor-project" || req.NoteID != "qa-attestor-note" {
		t.Errorf("got note %s/%s", req.AttestorProjectID, req.NoteID)
	}
	if req.PublicKeyID != testKeyID {
		t.Errorf("got public key ID %q", req.PublicKeyID)
	}
	payload, err := base64.StdEncoding.DecodeString(req.EncodedPayload)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	testutil.DeepEqual(t, clients.lastPayload, payload)
	if _, err := base64.StdEncoding.DecodeString(req.Signature); err != nil {
		t.Errorf("signature is not valid base64: %v", err)
	}
	if clients.lastKey.CryptoKey != "key" || clients.lastKey.Project != "attestor-project" {
		t.Errorf("signed with unexpected key %+v", clients.lastKey)
	}
	if !strings.Contains(out.String(), "projects/my-project/occurrences/abc123") {
		t.Errorf("build log missing occurrence name:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Creating attestation for "+testRef) {
		t.Errorf("build log missing intro line:\n%s", out.String())
	}
}

func TestAttestStepAlreadyExists(t *testing.T) {
	clients := &fakeClients{submitErr: status.Error(codes.AlreadyExists, "occurrence already exists")}
	out := &bytes.Buffer{}
	outcome := AttestStep(context.Background(), factoryFor(clients, nil), out, testBuild(), testStep(), testRef)

	if outcome.State != AlreadyExists || !outcome.Succeeded() || outcome.FailsBuild {
		t.Fatalf("got outcome %+v, expected AlreadyExists", outcome)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("build log missing conflict notice:\n%s", out.String())
	}
}

func TestAttestStepCredentialFailureIsNoOp(t *testing.T) {
	clients := &fakeClients{}
	out := &bytes.Buffer{}
	outcome := AttestStep(context.Background(), factoryFor(clients, fmt.Errorf("no such credential")), out, testBuild(), testStep(), testRef)

	if outcome.State != Aborted || outcome.FailsBuild {
		t.Fatalf("got outcome %+v, expected a non-fatal abort", outcome)
	}
	if clients.signCalls != 0 || clients.submitCalls != 0 {
		t.Error("no remote stage should run without clients")
	}
	if !strings.Contains(out.String(), `Failed to get credentials "builder-sa"`) {
		t.Errorf("build log missing credential notice:\n%s", out.String())
	}
}

func TestAttestStepFailures(t *testing.T) {
	tests := []struct {
		name    string
		clients *fakeClients
	}{
		{name: "payload generation fails", clients: &fakeClients{payloadErr: fmt.Errorf("bad reference")}},
		{name: "signing fails", clients: &fakeClients{signErr: fmt.Errorf("permission denied")}},
		{name: "submission fails", clients: &fakeClients{submitErr: fmt.Errorf("deadline exceeded")}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			outcome := AttestStep(context.Background(), factoryFor(test.clients, nil), out, testBuild(), testStep(), testRef)
			if outcome.State != Aborted || !outcome.FailsBuild || outcome.Err == nil {
				t.Fatalf("got outcome %+v, expected a build-failing abort", outcome)
			}
		})
	}
}

func TestAttestStepRejectsMalformedKeyBeforeSigning(t *testing.T) {
	clients := &fakeClients{}
	step := testStep()
	step.PublicKeyID = "0638AADD1DD9004AE32FBF9F64BA1BB43A24B8A2"
	out := &bytes.Buffer{}
	outcome := AttestStep(context.Background(), factoryFor(clients, nil), out, testBuild(), step, testRef)

	if outcome.State != Aborted || !outcome.FailsBuild {
		t.Fatalf("got outcome %+v, expected a build-failing abort", outcome)
	}
	if clients.signCalls != 0 || clients.submitCalls != 0 {
		t.Error("malformed key must be rejected before any remote stage runs")
	}
}

type fakeRegistry struct {
	digest string
	err    error
	calls  int
}

func (f *fakeRegistry) ResolveTag(ctx context.Context, repositoryURI, tag string) (string, error) {
	f.calls++
	return f.digest, f.err
}

func TestRunnerRun(t *testing.T) {
	clients := &fakeClients{}
	registry := &fakeRegistry{digest: "sha256:b3f3eccfd27c9864312af3796067e7db28007a1566e1e042c5862eed3ff1b2c8"}
	runner := &Runner{
		Factory:  factoryFor(clients, nil),
		Registry: registry,
		Env:      func(string) string { return "" },
		Out:      &bytes.Buffer{},
	}
	build := testBuild()
	build.ContainerQualifier = "v1"
	build.QualifierIsDigest = false
	build.Steps = []config.AttestStep{testStep(), testStep()}

	if err := runner.Run(context.Background(), build); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if registry.calls != 1 {
		t.Errorf("reference resolved %d times, expected once per build", registry.calls)
	}
	if clients.submitCalls != 2 {
		t.Errorf("submitted %d attestations, expected one per step", clients.submitCalls)
	}
	if clients.lastRequest.ResourceURI != "https://"+testRef {
		t.Errorf("got resource URI %q", clients.lastRequest.ResourceURI)
	}
}

func TestRunnerRunDigestMacro(t *testing.T) {
	clients := &fakeClients{}
	registry := &fakeRegistry{}
	runner := &Runner{
		Factory:  factoryFor(clients, nil),
		Registry: registry,
		Env: func(name string) string {
			if name == "IMAGE_DIGEST" {
				return "sha256:b3f3eccfd27c9864312af3796067e7db28007a1566e1e042c5862eed3ff1b2c8"
			}
			return ""
		},
		Out: &bytes.Buffer{},
	}
	build := testBuild()
	build.ContainerQualifier = "$IMAGE_DIGEST"
	build.Steps = []config.AttestStep{testStep()}

	if err := runner.Run(context.Background(), build); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if registry.calls != 0 {
		t.Error("digest-kind build must not consult the registry")
	}
	if clients.lastRequest.ResourceURI != "https://"+testRef {
		t.Errorf("got resource URI %q", clients.lastRequest.ResourceURI)
	}
}

func TestRunnerRunStopsOnFatalStep(t *testing.T) {
	clients := &fakeClients{submitErr: fmt.Errorf("deadline exceeded")}
	runner := &Runner{
		Factory: factoryFor(clients, nil),
		Out:     &bytes.Buffer{},
	}
	build := testBuild()
	build.Steps = []config.AttestStep{testStep(), testStep()}

	if err := runner.Run(context.Background(), build); err == nil {
		t.Fatal("expected the run to fail")
	}
	if clients.submitCalls != 1 {
		t.Errorf("submitted %d attestations, expected the run to stop at the first fatal step", clients.submitCalls)
	}
}

func TestRunnerRunAbsorbsCredentialFailure(t *testing.T) {
	runner := &Runner{
		Factory: factoryFor(nil, fmt.Errorf("no such credential")),
		Out:     &bytes.Buffer{},
	}
	build := testBuild()
	build.Steps = []config.AttestStep{testStep()}

	if err := runner.Run(context.Background(), build); err != nil {
		t.Errorf("credential failure should not fail the build, got %v", err)
	}
}

func TestRunnerRunResolutionFailure(t *testing.T) {
	registry := &fakeRegistry{err: fmt.Errorf("manifest unknown")}
	runner := &Runner{
		Factory:  factoryFor(&fakeClients{}, nil),
		Registry: registry,
		Out:      &bytes.Buffer{},
	}
	build := testBuild()
	build.ContainerQualifier = "v1"
	build.QualifierIsDigest = false

	if err := runner.Run(context.Background(), build); err == nil {
		t.Fatal("expected resolution failure to fail the run")
	}
}

func TestOutcomeSucceeded(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{Done, true},
		{AlreadyExists, true},
		{Aborted, false},
		{Start, false},
	}
	for _, test := range tests {
		if actual := (Outcome{State: test.state}).Succeeded(); actual != test.expected {
			t.Errorf("Succeeded() for %s = %t, expected %t", test.state, actual, test.expected)
		}
	}
}
