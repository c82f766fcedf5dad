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

// Package seed provides functionality to seed test data into LocalStack for E2E testing.
//
// Test data is defined in JSON fixture files under testdata/ and created in
// LocalStack through the AWS SDK v2: AMIs are registered first, then
// instances are launched from them.
//
// Example usage:
//
//	ctx := context.Background()
//	cfg, err := awsconfig.LoadDefaultConfig(ctx,
//	    awsconfig.WithRegion("us-east-1"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	seeded, err := seed.SeedAll(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// SeedAll seeds all test data into LocalStack and reports the IDs created.
// cfg must already point at LocalStack; each fixture's region overrides
// cfg.Region.
//
// Instances are created on each run (which is acceptable for ephemeral
// LocalStack instances), so callers assert on the returned IDs rather than
// on totals.
func SeedAll(ctx context.Context, cfg aws.Config) (*Seeded, error) {
	// Add a timeout to prevent hanging if LocalStack is unresponsive
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	fixtures, err := loadEC2Fixtures()
	if err != nil {
		return nil, fmt.Errorf("failed to load EC2 fixtures: %w", err)
	}

	seeded, err := SeedEC2(ctx, cfg, fixtures)
	if err != nil {
		return nil, fmt.Errorf("failed to seed EC2 resources: %w", err)
	}
	return seeded, nil
}
