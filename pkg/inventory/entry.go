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

// Package inventory groups EC2 instances by the AMI they were launched from
// and resolves the metadata of every AMI in use, region by region.
//
// The pipeline for one region is strictly two-phase:
//  1. AggregateInstances walks every DescribeInstances page and builds a
//     Result keyed by image ID.
//  2. Resolver.Resolve looks up the images of that Result in batches and
//     fills in their metadata, tolerating failed batches.
//
// Builder repeats the pipeline for every region of the account and assembles
// a RegionInventory containing only the regions that completed.
package inventory

import (
	"encoding/json"
	"maps"
	"slices"
)

// ImageEntry holds what is known about one image: its metadata, when the
// image could be described, and the instances launched from it.
type ImageEntry struct {
	Description *string  `json:"ImageDescription"`
	Name        *string  `json:"ImageName"`
	Location    *string  `json:"ImageLocation"`
	OwnerID     *string  `json:"OwnerId"`
	InstanceIDs []string `json:"InstanceIds"`

	resolved bool
}

// NewImageEntry returns an entry with no metadata and an empty instance list.
// Every call allocates a new instance slice, so entries never share backing storage.
func NewImageEntry() *ImageEntry {
	return &ImageEntry{
		InstanceIDs: make([]string, 0),
	}
}

// AddInstance appends an instance ID. Duplicates are kept.
func (e *ImageEntry) AddInstance(instanceID string) {
	e.InstanceIDs = append(e.InstanceIDs, instanceID)
}

// Resolved reports whether metadata was returned for this image.
func (e *ImageEntry) Resolved() bool {
	return e.resolved
}

// Result maps image ID to ImageEntry for a single region. It remembers the
// order in which image IDs were first seen.
type Result struct {
	entries map[string]*ImageEntry
	order   []string
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{
		entries: make(map[string]*ImageEntry),
	}
}

// GetOrCreate returns the entry for imageID, creating it with NewImageEntry
// on first use.
func (r *Result) GetOrCreate(imageID string) *ImageEntry {
	if entry, ok := r.entries[imageID]; ok {
		return entry
	}
	entry := NewImageEntry()
	r.entries[imageID] = entry
	r.order = append(r.order, imageID)
	return entry
}

// Get returns the entry for imageID, if present.
func (r *Result) Get(imageID string) (*ImageEntry, bool) {
	entry, ok := r.entries[imageID]
	return entry, ok
}

// ImageIDs returns the image IDs in first-seen order.
func (r *Result) ImageIDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of distinct images.
func (r *Result) Len() int {
	return len(r.entries)
}

// InstanceCount returns the total number of instance IDs across all images.
func (r *Result) InstanceCount() int {
	total := 0
	for _, entry := range r.entries {
		total += len(entry.InstanceIDs)
	}
	return total
}

// UnresolvedCount returns how many images have no metadata.
func (r *Result) UnresolvedCount() int {
	count := 0
	for _, entry := range r.entries {
		if !entry.resolved {
			count++
		}
	}
	return count
}

// InstanceCounts returns image ID to number of instances.
func (r *Result) InstanceCounts() map[string]int {
	counts := make(map[string]int, len(r.entries))
	for id, entry := range r.entries {
		counts[id] = len(entry.InstanceIDs)
	}
	return counts
}

// MarshalJSON renders the Result as an object keyed by image ID.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.entries)
}

// RegionInventory maps region name to that region's Result.
type RegionInventory map[string]*Result

// Regions returns the region names in the inventory, sorted.
func (ri RegionInventory) Regions() []string {
	return slices.Sorted(maps.Keys(ri))
}
