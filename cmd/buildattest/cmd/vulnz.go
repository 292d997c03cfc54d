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
	"os"

	"github.com/containersec/buildattest/pkg/buildattest/container"
	"github.com/containersec/buildattest/pkg/buildattest/gcp"
	"github.com/spf13/cobra"
)

var vulnzCmd = &cobra.Command{
	Use:   "vulnz",
	Short: "Lists the known package vulnerabilities for the configured container image.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		build, store, err := loadBuild()
		if err != nil {
			return err
		}
		factory, err := gcp.FactoryForCredentials(ctx, store.Fetch, build.CredentialsID)
		if err != nil {
			return err
		}
		canonicalRef, err := container.Resolve(ctx, build.ContainerURI, build.ContainerQualifier,
			build.QualifierIsDigest, os.Getenv, factory.Registry())
		if err != nil {
			return err
		}
		analysis, err := factory.Analysis(ctx)
		if err != nil {
			return err
		}
		vulnz, err := analysis.Vulnerabilities(ctx, canonicalRef)
		if err != nil {
			return err
		}
		for _, v := range vulnz {
			fix := "no fix available"
			if v.HasFixAvailable {
				fix = "fix available"
			}
			fmt.Printf("%s\t%s\t%s\n", v.Severity, v.CVE, fix)
		}
		return nil
	},
}
