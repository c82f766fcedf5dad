/*
Copyright 2025 Lumina Contributors.

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

package metrics

// This file exports metric name constants for use by external consumers
// (dashboards, alert rules, scripts reading the textfile export) that need to
// query inventory metrics programmatically.
//
// For metric label names, see the exported label constants in labels.go.
//
// Example usage:
//
//	query := fmt.Sprintf("sum by (%s) (%s)", metrics.LabelRegion, metrics.MetricInventoryInstances)

// Run Metrics
//
// These metrics describe a whole inventory run.

const (
	// MetricInventoryLastRunTimestamp records the Unix timestamp at which the
	// last inventory run finished.
	// Type: Gauge
	// Labels: none
	MetricInventoryLastRunTimestamp = "ami_inventory_last_run_timestamp_seconds"

	// MetricInventoryRegions counts the regions the last run attempted.
	// Type: Gauge
	// Labels: none
	MetricInventoryRegions = "ami_inventory_regions"
)

// Region Metrics
//
// These metrics are set once per region per run.

const (
	// MetricInventoryRegionSuccess indicates whether the region was inventoried
	// successfully (1) or dropped from the report (0).
	// Type: Gauge
	// Labels: region
	MetricInventoryRegionSuccess = "ami_inventory_region_success"

	// MetricInventoryRegionDurationSeconds measures how long a region took,
	// aggregation and metadata resolution together.
	// Type: Histogram
	// Labels: region
	MetricInventoryRegionDurationSeconds = "ami_inventory_region_duration_seconds"

	// MetricInventoryImages counts the distinct images referenced by at least
	// one instance in the region.
	// Type: Gauge
	// Labels: region
	MetricInventoryImages = "ami_inventory_images"

	// MetricInventoryInstances counts the instances seen in the region.
	// Type: Gauge
	// Labels: region
	MetricInventoryInstances = "ami_inventory_instances"

	// MetricInventoryUnresolvedImages counts images whose metadata could not be
	// resolved (deregistered, not shared, or in a failed batch).
	// Type: Gauge
	// Labels: region
	MetricInventoryUnresolvedImages = "ami_inventory_unresolved_images"

	// MetricInventoryImageInstances counts the instances launched from one image.
	// Type: Gauge
	// Labels: region, image_id
	MetricInventoryImageInstances = "ami_inventory_image_instances"
)

// Metadata Resolution Metrics

const (
	// MetricInventoryDescribeImagesBatches counts DescribeImages batches by outcome.
	// Type: Counter
	// Labels: region, result
	MetricInventoryDescribeImagesBatches = "ami_inventory_describe_images_batches_total"
)
