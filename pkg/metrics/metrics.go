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

// Package metrics provides Prometheus metrics for an AMI inventory run.
// It exposes per-region outcome, inventory size and metadata resolution
// health, and can export everything to a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for an inventory run.
type Metrics struct {
	// LastRunTimestamp records the Unix timestamp at which the last run finished.
	LastRunTimestamp prometheus.Gauge

	// Regions is the number of regions the last run attempted.
	Regions prometheus.Gauge

	// RegionSuccess is 1 when a region made it into the report, 0 when it was dropped.
	// Labels: region
	RegionSuccess *prometheus.GaugeVec

	// RegionDuration measures the wall time spent on each region.
	// Labels: region
	RegionDuration *prometheus.HistogramVec

	// Images counts distinct images per region.
	// Labels: region
	Images *prometheus.GaugeVec

	// Instances counts instances per region.
	// Labels: region
	Instances *prometheus.GaugeVec

	// UnresolvedImages counts images left without metadata per region.
	// Labels: region
	UnresolvedImages *prometheus.GaugeVec

	// ImageInstances counts instances per image.
	// Labels: region, image_id
	ImageInstances *prometheus.GaugeVec

	// DescribeImagesBatches counts metadata batches by outcome.
	// Labels: region, result
	DescribeImagesBatches *prometheus.CounterVec
}

// NewMetrics creates and registers all inventory metrics with the provided
// registry.
//
// Example usage:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewMetrics(reg)
//	defer m.WriteTextfile("/var/lib/node_exporter/ami_inventory.prom", reg)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricInventoryLastRunTimestamp,
			Help: "Unix timestamp at which the last inventory run finished",
		}),

		Regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricInventoryRegions,
			Help: "Number of regions the last inventory run attempted",
		}),

		RegionSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricInventoryRegionSuccess,
			Help: "Whether the region was inventoried successfully (1 = success, 0 = dropped)",
		}, []string{LabelRegion}),

		RegionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: MetricInventoryRegionDurationSeconds,
			Help: "Time taken to inventory a region",
			// Empty regions answer in well under a second, busy ones page for minutes
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{LabelRegion}),

		Images: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricInventoryImages,
			Help: "Distinct images referenced by at least one instance",
		}, []string{LabelRegion}),

		Instances: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricInventoryInstances,
			Help: "Instances seen in the region",
		}, []string{LabelRegion}),

		UnresolvedImages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricInventoryUnresolvedImages,
			Help: "Images whose metadata could not be resolved",
		}, []string{LabelRegion}),

		ImageInstances: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricInventoryImageInstances,
			Help: "Instances launched from the image",
		}, []string{LabelRegion, LabelImageID}),

		DescribeImagesBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricInventoryDescribeImagesBatches,
			Help: "DescribeImages batches by outcome",
		}, []string{LabelRegion, LabelResult}),
	}

	reg.MustRegister(
		m.LastRunTimestamp,
		m.Regions,
		m.RegionSuccess,
		m.RegionDuration,
		m.Images,
		m.Instances,
		m.UnresolvedImages,
		m.ImageInstances,
		m.DescribeImagesBatches,
	)

	return m
}

// RecordRegion records the outcome of one region. A failed region has its
// inventory gauges removed so a dropped region never reports stale counts.
func (m *Metrics) RecordRegion(region string, success bool, duration time.Duration) {
	m.RegionDuration.WithLabelValues(region).Observe(duration.Seconds())

	if success {
		m.RegionSuccess.WithLabelValues(region).Set(1)
		return
	}

	m.RegionSuccess.WithLabelValues(region).Set(0)
	m.Images.DeleteLabelValues(region)
	m.Instances.DeleteLabelValues(region)
	m.UnresolvedImages.DeleteLabelValues(region)
	m.ImageInstances.DeletePartialMatch(prometheus.Labels{LabelRegion: region})
}

// RecordBatch records the outcome of one DescribeImages batch.
func (m *Metrics) RecordBatch(region string, success bool) {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}
	m.DescribeImagesBatches.WithLabelValues(region, result).Inc()
}

// MarkRunFinished records the number of attempted regions and the finish time.
func (m *Metrics) MarkRunFinished(regions int) {
	m.Regions.Set(float64(regions))
	m.LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes everything gathered from g to path in the Prometheus
// text format, atomically, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
