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

	"github.com/go-logr/logr"

	"github.com/nextdoor/ami-inventory/pkg/aws"
	"github.com/nextdoor/ami-inventory/pkg/metrics"
)

// ImageDescriber looks up image metadata. aws.EC2Client satisfies it.
type ImageDescriber interface {
	DescribeImages(ctx context.Context, imageIDs []string) ([]aws.Image, error)
}

// Resolver fills in image metadata for the images of a Result.
type Resolver struct {
	// Images is the metadata source
	Images ImageDescriber

	// BatchSize is the number of image IDs per DescribeImages call.
	// Values outside 1..aws.MaxDescribeImagesBatchSize fall back to the maximum.
	BatchSize int

	// Log receives one error entry per failed batch
	Log logr.Logger

	// Metrics is optional
	Metrics *metrics.Metrics
}

// ResolveMetadata resolves the metadata of every image in result using
// batches of batchSize image IDs. See Resolver.Resolve.
func ResolveMetadata(
	ctx context.Context,
	images ImageDescriber,
	result *Result,
	batchSize int,
	log logr.Logger,
) *Result {
	r := &Resolver{Images: images, BatchSize: batchSize, Log: log}
	return r.Resolve(ctx, "", result)
}

// Resolve describes the images referenced by result, in consecutive batches
// taken in first-seen order, and overwrites the metadata of every image the
// API returns. Instance IDs are never touched.
//
// A failed batch is logged and skipped: its images keep empty metadata and
// the remaining batches still run. Images the API does not return (for
// example deregistered AMIs) also keep empty metadata. The empty image ID
// is never sent.
//
// Resolve mutates result and returns it.
func (r *Resolver) Resolve(ctx context.Context, region string, result *Result) *Result {
	log := r.Log
	if region != "" {
		log = log.WithValues("region", region)
	}

	batchSize := r.BatchSize
	if batchSize < 1 || batchSize > aws.MaxDescribeImagesBatchSize {
		batchSize = aws.MaxDescribeImagesBatchSize
	}

	imageIDs := make([]string, 0, result.Len())
	for _, id := range result.ImageIDs() {
		if id != "" {
			imageIDs = append(imageIDs, id)
		}
	}

	for offset := 0; offset < len(imageIDs); offset += batchSize {
		batch := imageIDs[offset:min(offset+batchSize, len(imageIDs))]
		batchLog := log.WithValues(
			"batch_index", offset/batchSize,
			"batch_offset", offset,
			"batch_size", len(batch),
		)

		if err := ctx.Err(); err != nil {
			batchLog.Error(err, "stopping image metadata resolution")
			return result
		}

		images, err := r.Images.DescribeImages(ctx, batch)
		if err != nil {
			batchLog.Error(err, "could not fetch image details for batch, keeping default metadata",
				errorDetails(err)...)
			r.recordBatch(region, false)
			continue
		}
		r.recordBatch(region, true)

		for _, img := range images {
			// Only images this region actually uses get metadata; never create entries here
			entry, ok := result.Get(img.ImageID)
			if !ok {
				continue
			}
			entry.Description = img.Description
			entry.Name = img.Name
			entry.Location = img.ImageLocation
			entry.OwnerID = img.OwnerID
			entry.resolved = true
		}

		batchLog.V(1).Info("resolved image metadata batch", "returned", len(images))
	}

	return result
}

func (r *Resolver) recordBatch(region string, success bool) {
	if r.Metrics != nil {
		r.Metrics.RecordBatch(region, success)
	}
}
