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
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultSessionName is the AssumeRole session name used when none is configured.
const DefaultSessionName = "ami-inventory"

// ErrNoRegion is returned when neither the caller nor the environment
// provides a region to scope an EC2 client to.
var ErrNoRegion = errors.New("no AWS region configured")

// RealClient is a production implementation of the Client interface that
// makes real calls to AWS APIs using the AWS SDK v2.
//
// This implementation handles:
//   - Credential management using AWS SDK default credential chain
//   - Optional STS AssumeRole on top of the default chain
//   - Region-scoped EC2 clients derived from one shared aws.Config
//
// For testing, use MockClient instead.
type RealClient struct {
	config    ClientConfig
	awsCfg    aws.Config
	stsClient *sts.Client

	mu         sync.Mutex
	ec2Clients map[string]*RealEC2Client // Cached per-region EC2 clients
}

// NewRealClient creates a new RealClient with the specified configuration.
// The client uses the AWS SDK default credential chain for authentication.
func NewRealClient(ctx context.Context, cfg ClientConfig) (*RealClient, error) {
	// Load AWS configuration using default credential chain
	// This will automatically use:
	// 1. Environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
	// 2. Shared credentials file (~/.aws/credentials)
	// 3. IAM role (if running on EC2 or ECS)
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.DefaultRegion != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.DefaultRegion))
	}
	if cfg.MaxRetries > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(cfg.MaxRetries))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil { // coverage:ignore - AWS SDK config loading errors are difficult to trigger in unit tests
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	stsOpts := []func(*sts.Options){}
	if cfg.EndpointURL != "" {
		// Override endpoint for LocalStack testing
		endpointURL := cfg.EndpointURL
		stsOpts = append(stsOpts, func(o *sts.Options) {
			o.BaseEndpoint = &endpointURL
		})
	}

	if cfg.AssumeRoleARN != "" {
		sessionName := cfg.SessionName
		if sessionName == "" {
			sessionName = DefaultSessionName
		}
		// The base credentials only ever sign the AssumeRole call; everything
		// else goes out under the assumed role.
		provider := stscreds.NewAssumeRoleProvider(
			sts.NewFromConfig(awsCfg, stsOpts...),
			cfg.AssumeRoleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = sessionName
				if cfg.ExternalID != "" {
					o.ExternalID = aws.String(cfg.ExternalID)
				}
			},
		)
		awsCfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return &RealClient{
		config:     cfg,
		awsCfg:     awsCfg,
		stsClient:  sts.NewFromConfig(awsCfg, stsOpts...),
		ec2Clients: make(map[string]*RealEC2Client),
	}, nil
}

// EC2 returns an EC2Client for the specified region.
// The client is cached per-region so repeated calls share one SDK client.
func (c *RealClient) EC2(_ context.Context, region string) (EC2Client, error) {
	if region == "" {
		region = c.awsCfg.Region
	}
	if region == "" {
		return nil, ErrNoRegion
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.ec2Clients[region]; ok {
		return client, nil
	}

	regionCfg := c.awsCfg.Copy()
	regionCfg.Region = region
	client := NewRealEC2Client(regionCfg, c.config.EndpointURL, c.config.IncludeAllStates)

	c.ec2Clients[region] = client
	return client, nil
}

// CallerIdentity returns the identity of the credentials in use via
// STS GetCallerIdentity.
func (c *RealClient) CallerIdentity(ctx context.Context) (*Identity, error) {
	out, err := c.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}

	return &Identity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
		UserID:    aws.ToString(out.UserId),
	}, nil
}
