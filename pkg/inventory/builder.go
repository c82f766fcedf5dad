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

package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/nextdoor/ami-inventory/pkg/aws"
	"github.com/nextdoor/ami-inventory/pkg/metrics"
)

// Builder builds a RegionInventory across every region of the account.
//
// Failures are contained at the narrowest scope that still makes progress:
// a failed metadata batch only loses that batch's metadata, a failed region
// is left out of the inventory, and only a failure to list regions aborts
// the whole build.
type Builder struct {
	// AWS client for making API calls
	Client aws.Client

	// BatchSize is passed to the Resolver of every region
	BatchSize int

	// Regions optionally restricts the build to these regions
	Regions []string

	// Concurrency is how many regions are processed at once.
	// Values below 2 process regions sequentially in enumeration order.
	Concurrency int

	// Logger
	Log logr.Logger

	// Metrics is optional
	Metrics *metrics.Metrics
}

// Build enumerates the regions through the default-scope client and builds
// one Result per region. Regions that fail are logged and omitted; the
// returned error is non-nil only when the region list cannot be obtained.
func (b *Builder) Build(ctx context.Context) (RegionInventory, error) {
	log := b.Log.WithValues("component", "inventory")
	startTime := time.Now()

	defaultClient, err := b.Client.EC2(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create default EC2 client: %w", err)
	}

	enabled, err := defaultClient.DescribeRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	regions := SelectRegions(enabled, b.Regions, log)
	log.Info("starting inventory", "regions", len(regions), "concurrency", max(b.Concurrency, 1))

	inventory := make(RegionInventory, len(regions))
	var mu sync.Mutex

	// A plain Group (not WithContext): one region failing must not cancel the others
	var g errgroup.Group
	g.SetLimit(max(b.Concurrency, 1))

	for _, region := range regions {
		g.Go(func() error {
			result, err := b.buildRegion(ctx, region, log.WithValues("region", region))
			if err != nil {
				log.Error(err, "error processing region, omitting it from the inventory",
					append([]any{"region", region}, errorDetails(err)...)...)
				return nil
			}

			mu.Lock()
			inventory[region] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if b.Metrics != nil {
		b.Metrics.MarkRunFinished(len(regions))
	}
	log.Info("inventory completed",
		"regions_succeeded", len(inventory),
		"regions_failed", len(regions)-len(inventory),
		"duration_seconds", time.Since(startTime).Seconds())

	return inventory, nil
}

// buildRegion runs aggregation then resolution for one region. Any error or
// panic discards the region's partial Result.
func (b *Builder) buildRegion(ctx context.Context, region string, log logr.Logger) (result *Result, err error) {
	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic while processing region %s: %v", region, r)
		}
		if b.Metrics != nil {
			b.Metrics.RecordRegion(region, err == nil, time.Since(startTime))
		}
	}()

	client, err := b.Client.EC2(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to create EC2 client for %s: %w", region, err)
	}

	result, err = AggregateInstances(ctx, client.InstancePager())
	if err != nil {
		return nil, err
	}

	resolver := &Resolver{
		Images:    client,
		BatchSize: b.BatchSize,
		Log:       log,
		Metrics:   b.Metrics,
	}
	resolver.Resolve(ctx, region, result)

	// A cancelled run must not publish a region whose metadata was cut short
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing of %s interrupted: %w", region, err)
	}

	if b.Metrics != nil {
		b.Metrics.UpdateRegionInventory(region, result.InstanceCounts(), result.UnresolvedCount())
	}
	log.V(1).Info("inventoried region",
		"images", result.Len(),
		"instances", result.InstanceCount(),
		"unresolved_images", result.UnresolvedCount(),
		"duration_seconds", time.Since(startTime).Seconds())

	return result, nil
}
