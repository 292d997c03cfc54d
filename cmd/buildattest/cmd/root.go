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
	"flag"

	"github.com/containersec/buildattest/pkg/buildattest/config"
	"github.com/containersec/buildattest/pkg/buildattest/secrets"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	credentialsDir string
)

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "build.yaml", "Path to the build configuration file.")
	RootCmd.PersistentFlags().StringVar(&credentialsDir, "credentials-dir", "", "Directory holding service account key files, one <id>.json per credential.")
	// Pull in the glog flags.
	RootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	RootCmd.AddCommand(checkCmd, runCmd, vulnzCmd)
}

var RootCmd = &cobra.Command{
	Use:   "buildattest",
	Short: "Creates Binary Authorization attestations for container images as a CI build step.",
}

func loadBuild() (*config.Build, *secrets.Store, error) {
	build, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return build, secrets.NewStore(credentialsDir), nil
}
