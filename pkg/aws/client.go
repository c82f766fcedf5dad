// Copyright 2025 Lumina Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aws

import (
	"context"
)

// Client is the main interface for interacting with AWS services.
// It hands out region-scoped EC2 clients and reports which identity
// the configured credentials resolve to.
type Client interface {
	// EC2 returns an EC2Client scoped to the given region.
	// An empty region means the default region from ClientConfig.
	EC2(ctx context.Context, region string) (EC2Client, error)

	// CallerIdentity returns the identity behind the configured credentials.
	CallerIdentity(ctx context.Context) (*Identity, error)
}

// EC2Client provides access to the EC2 API operations needed to build an
// image inventory. Each EC2Client is bound to a single region.
type EC2Client interface {
	// Region returns the region this client is scoped to.
	Region() string

	// DescribeRegions returns the names of all regions enabled for the account,
	// in the order the API returns them.
	DescribeRegions(ctx context.Context) ([]string, error)

	// InstancePager returns a fresh pager over the instances in this region.
	InstancePager() InstancePager

	// DescribeImages returns metadata for the requested image IDs.
	// Unknown or deregistered images are omitted from the result.
	DescribeImages(ctx context.Context, imageIDs []string) ([]Image, error)
}

// InstancePager walks a paginated DescribeInstances listing.
// It mirrors the shape of the AWS SDK paginators.
type InstancePager interface {
	// HasMorePages reports whether NextPage may be called again.
	HasMorePages() bool

	// NextPage fetches the next page of reservations.
	NextPage(ctx context.Context) (*InstancePage, error)
}

// ClientConfig configures the AWS client creation.
type ClientConfig struct {
	// DefaultRegion is the region used for region-independent calls such as
	// DescribeRegions. If empty, the SDK default region resolution applies.
	DefaultRegion string

	// AssumeRoleARN, when set, is assumed via STS on top of the default
	// credential chain for every API call.
	AssumeRoleARN string

	// ExternalID is an optional external ID for the AssumeRole call.
	ExternalID string

	// SessionName is the AssumeRole session name.
	// Defaults to "ami-inventory" if not specified.
	SessionName string

	// MaxRetries is the maximum number of attempts the SDK retryer makes
	// per API call. Zero keeps the SDK default.
	MaxRetries int

	// IncludeAllStates lists instances in every state instead of only
	// running instances.
	IncludeAllStates bool

	// EndpointURL overrides the EC2 and STS endpoints.
	// Used for testing with LocalStack ("http://localhost:4566").
	EndpointURL string
}

// NewClient creates a new AWS client with the specified configuration.
// The client uses the AWS SDK default credential chain and, if configured,
// assumes a role on top of it.
//
// For testing with LocalStack, set config.EndpointURL.
func NewClient(ctx context.Context, config ClientConfig) (Client, error) {
	return NewRealClient(ctx, config)
}
