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
	"context"
	"fmt"
	"strings"

	"github.com/containersec/buildattest/pkg/buildattest/payload"
	"github.com/pkg/errors"
	binaryauthorization "google.golang.org/api/binaryauthorization/v1beta1"
	"google.golang.org/api/option"
)

type binAuthzClient struct {
	service *binaryauthorization.Service
}

func newBinAuthzClient(ctx context.Context, opts ...option.ClientOption) (BinAuthzClient, error) {
	service, err := binaryauthorization.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &binAuthzClient{service: service}, nil
}

func (c *binAuthzClient) ListAttestors(ctx context.Context, projectID string) ([]string, error) {
	attestors := []string{}
	call := c.service.Projects.Attestors.List(fmt.Sprintf("projects/%s", projectID)).Context(ctx)
	err := call.Pages(ctx, func(resp *binaryauthorization.ListAttestorsResponse) error {
		for _, a := range resp.Attestors {
			attestors = append(attestors, nameFromSelfLink(a.Name))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list attestors under project %s", projectID)
	}
	return attestors, nil
}

func (c *binAuthzClient) GetAttestor(ctx context.Context, projectID, attestorID string) (*Attestor, error) {
	name := fmt.Sprintf("projects/%s/attestors/%s", projectID, attestorID)
	attestor, err := c.service.Projects.Attestors.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get attestor %s", name)
	}
	keys := []string{}
	if note := attestor.UserOwnedDrydockNote; note != nil {
		for _, k := range note.PublicKeys {
			keys = append(keys, k.Id)
		}
	}
	return &Attestor{
		ID:           nameFromSelfLink(attestor.Name),
		PublicKeyIDs: keys,
	}, nil
}

// GenerateAttestationPayload produces the canonical payload the service
// expects to be signed over for a canonical image reference.
func (c *binAuthzClient) GenerateAttestationPayload(canonicalRef string) ([]byte, error) {
	p, err := payload.New(canonicalRef, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate attestation payload for %s", canonicalRef)
	}
	return p.JSON()
}

// nameFromSelfLink returns the final segment of a resource name such as
// projects/p/attestors/a.
func nameFromSelfLink(name string) string {
	parts := strings.Split(name, "/")
	return parts[len(parts)-1]
}
