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
	"context"
	"io"

	"github.com/containersec/buildattest/pkg/buildattest/config"
	"github.com/containersec/buildattest/pkg/buildattest/container"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Runner executes a configured build: it resolves the container reference
// once and runs every attestation step against it.
type Runner struct {
	// Factory builds the clients for a credentials ID.
	Factory FactoryFunc
	// Registry resolves tag qualifiers; consulted only for tag-kind builds.
	Registry container.TagResolver
	// Env is the run environment used to expand digest macros. Nil falls
	// back to the process environment.
	Env func(string) string
	// Out receives build log lines.
	Out io.Writer
}

// Run resolves the configured reference and attests it with every step.
// The first step whose failure must fail the build stops the run.
func (r *Runner) Run(ctx context.Context, build *config.Build) error {
	glog.Info("Performing container security build steps")
	canonicalRef, err := container.Resolve(ctx, build.ContainerURI, build.ContainerQualifier,
		build.QualifierIsDigest, r.Env, r.Registry)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve container reference for %s", build.ContainerURI)
	}
	for _, step := range build.Steps {
		if outcome := AttestStep(ctx, r.Factory, r.Out, build, step, canonicalRef); outcome.FailsBuild {
			return errors.Wrapf(outcome.Err, "attestation with attestor %s/%s failed",
				step.AttestorProjectID, step.AttestorID)
		}
	}
	return nil
}
