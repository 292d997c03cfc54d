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

	"github.com/pkg/errors"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/option"
)

type resourceManagerClient struct {
	service *cloudresourcemanager.Service
}

func newResourceManagerClient(ctx context.Context, opts ...option.ClientOption) (ResourceManagerClient, error) {
	service, err := cloudresourcemanager.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &resourceManagerClient{service: service}, nil
}

func (c *resourceManagerClient) ListProjects(ctx context.Context) ([]string, error) {
	projects := []string{}
	call := c.service.Projects.List().Context(ctx)
	err := call.Pages(ctx, func(resp *cloudresourcemanager.ListProjectsResponse) error {
		for _, p := range resp.Projects {
			projects = append(projects, p.ProjectId)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list projects")
	}
	return projects, nil
}
