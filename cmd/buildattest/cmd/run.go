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
	"os"

	"github.com/containersec/buildattest/pkg/buildattest/gcp"
	"github.com/containersec/buildattest/pkg/buildattest/pipeline"
	"github.com/containersec/buildattest/pkg/buildattest/secrets"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolves the configured container reference and creates the configured attestations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		build, store, err := loadBuild()
		if err != nil {
			return err
		}
		runner := &pipeline.Runner{
			Factory:  clientsFactory(store),
			Registry: &lazyRegistry{store: store, credentialsID: build.CredentialsID},
			Env:      os.Getenv,
			Out:      os.Stdout,
		}
		return runner.Run(context.Background(), build)
	},
}

func clientsFactory(store *secrets.Store) pipeline.FactoryFunc {
	return func(ctx context.Context, credentialsID string) (pipeline.Clients, error) {
		factory, err := gcp.FactoryForCredentials(ctx, store.Fetch, credentialsID)
		if err != nil {
			return nil, err
		}
		return factory, nil
	}
}

// lazyRegistry defers credential resolution until a tag actually needs a
// registry lookup; digest-kind builds never touch the credential here.
type lazyRegistry struct {
	store         *secrets.Store
	credentialsID string
}

func (l *lazyRegistry) ResolveTag(ctx context.Context, repositoryURI, tag string) (string, error) {
	factory, err := gcp.FactoryForCredentials(ctx, l.store.Fetch, l.credentialsID)
	if err != nil {
		return "", err
	}
	return factory.Registry().ResolveTag(ctx, repositoryURI, tag)
}
