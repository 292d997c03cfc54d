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

package cmd

import (
	"context"
	"fmt"

	"github.com/containersec/buildattest/pkg/buildattest/config"
	"github.com/containersec/buildattest/pkg/buildattest/container"
	"github.com/containersec/buildattest/pkg/buildattest/descriptor"
	"github.com/containersec/buildattest/pkg/buildattest/gcp"
	"github.com/containersec/buildattest/pkg/buildattest/secrets"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validates the build configuration field by field.",
	RunE: func(cmd *cobra.Command, args []string) error {
		build, store, err := loadBuild()
		if err != nil {
			return err
		}
		if failed := runChecks(context.Background(), build, store); failed {
			return fmt.Errorf("configuration has errors")
		}
		return nil
	},
}

// runChecks walks every configuration-time validation in dependency order
// and prints one line per field. It returns true if any check errored.
func runChecks(ctx context.Context, build *config.Build, store *secrets.Store) bool {
	supplier := listerSupplier(ctx, store, build.CredentialsID)
	failed := false
	report := func(field string, r descriptor.Result) {
		if r.Kind == descriptor.KindOK {
			fmt.Printf("%s: ok\n", field)
			return
		}
		fmt.Printf("%s: %s: %s\n", field, r.Kind, r.Message)
		if r.IsError() {
			failed = true
		}
	}

	report("credentialsId", descriptor.CheckCredentialsID(ctx, store, build.CredentialsID))
	report("projectId", descriptor.CheckProjectID(ctx, supplier, build.CredentialsID, build.ProjectID))
	report("containerUri", container.CheckURI(build.ProjectID, build.ContainerURI))
	report("containerQualifier", container.CheckQualifier(build.CredentialsID, build.ContainerQualifier, build.QualifierIsDigest))
	for i, step := range build.Steps {
		prefix := fmt.Sprintf("steps[%d].", i)
		report(prefix+"attestorProjectId",
			descriptor.CheckAttestorProjectID(ctx, supplier, build.CredentialsID, step.AttestorProjectID))
		report(prefix+"attestorId",
			descriptor.CheckAttestorID(ctx, supplier, build.CredentialsID, step.AttestorProjectID, step.AttestorID))
		report(prefix+"publicKeyId",
			descriptor.CheckPublicKeyID(ctx, supplier, build.CredentialsID, step.AttestorProjectID, step.AttestorID, step.PublicKeyID))
	}
	return failed
}

func listerSupplier(ctx context.Context, store *secrets.Store, credentialsID string) descriptor.ListerSupplier {
	return func() (descriptor.Lister, error) {
		factory, err := gcp.FactoryForCredentials(ctx, store.Fetch, credentialsID)
		if err != nil {
			return nil, err
		}
		return factory, nil
	}
}
