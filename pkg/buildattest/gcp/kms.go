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
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	kms "cloud.google.com/go/kms/apiv1"
	"github.com/containersec/buildattest/pkg/buildattest/constants"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	kmspb "google.golang.org/genproto/googleapis/cloud/kms/v1"
)

// Indices of the key path components within the 10 slash-separated
// segments of a public key ID.
const (
	keyPathProjectIndex          = 1
	keyPathLocationIndex         = 3
	keyPathKeyRingIndex          = 5
	keyPathCryptoKeyIndex        = 7
	keyPathCryptoKeyVersionIndex = 9
)

// KeyPath is the decomposed identity of a Cloud KMS key version.
type KeyPath struct {
	Project          string
	Location         string
	KeyRing          string
	CryptoKey        string
	CryptoKeyVersion string
}

// ParseKeyPath decomposes a public key ID of the form
// projects/<p>/locations/<l>/keyRings/<r>/cryptoKeys/<k>/cryptoKeyVersions/<v>.
// Any other segmentation, including correct length with wrong path markers,
// is rejected; the signing stage must never be reached with a malformed ID.
func ParseKeyPath(publicKeyID string) (KeyPath, error) {
	segments := strings.Split(publicKeyID, "/")
	if len(segments) != constants.PublicKeyIDElements {
		return KeyPath{}, fmt.Errorf("public key ID %q does not have %d segments", publicKeyID, constants.PublicKeyIDElements)
	}
	markers := []string{"projects", "locations", "keyRings", "cryptoKeys", "cryptoKeyVersions"}
	for i, m := range markers {
		if segments[2*i] != m {
			return KeyPath{}, fmt.Errorf("public key ID %q is missing the %q path marker", publicKeyID, m)
		}
	}
	return KeyPath{
		Project:          segments[keyPathProjectIndex],
		Location:         segments[keyPathLocationIndex],
		KeyRing:          segments[keyPathKeyRingIndex],
		CryptoKey:        segments[keyPathCryptoKeyIndex],
		CryptoKeyVersion: segments[keyPathCryptoKeyVersionIndex],
	}, nil
}

// ResourceName renders the path back into the KMS key version resource name.
func (k KeyPath) ResourceName() string {
	return fmt.Sprintf("projects/%s/locations/%s/keyRings/%s/cryptoKeys/%s/cryptoKeyVersions/%s",
		k.Project, k.Location, k.KeyRing, k.CryptoKey, k.CryptoKeyVersion)
}

type kmsClient struct {
	client *kms.KeyManagementClient
}

func newKMSClient(ctx context.Context, opts ...option.ClientOption) (KMSClient, error) {
	client, err := kms.NewKeyManagementClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &kmsClient{client: client}, nil
}

// AsymmetricSign requests a signature over the SHA256 digest of payload and
// returns it base64 encoded.
func (c *kmsClient) AsymmetricSign(ctx context.Context, key KeyPath, payload []byte) (string, error) {
	digest := sha256.Sum256(payload)
	req := &kmspb.AsymmetricSignRequest{
		Name: key.ResourceName(),
		Digest: &kmspb.Digest{
			Digest: &kmspb.Digest_Sha256{Sha256: digest[:]},
		},
	}
	result, err := c.client.AsymmetricSign(ctx, req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign with key %s", key.ResourceName())
	}
	return base64.StdEncoding.EncodeToString(result.Signature), nil
}
