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

// UpdateRegionInventory replaces the inventory gauges of one region.
//
// imageInstances maps image ID to the number of instances launched from it;
// unresolved is the number of images left without metadata.
//
// The per-image gauges of the region are reset first, so images that no
// longer have instances disappear instead of keeping their old count.
func (m *Metrics) UpdateRegionInventory(region string, imageInstances map[string]int, unresolved int) {
	m.ImageInstances.DeletePartialMatch(map[string]string{LabelRegion: region})

	total := 0
	for imageID, count := range imageInstances {
		m.ImageInstances.WithLabelValues(region, imageID).Set(float64(count))
		total += count
	}

	m.Images.WithLabelValues(region).Set(float64(len(imageInstances)))
	m.Instances.WithLabelValues(region).Set(float64(total))
	m.UnresolvedImages.WithLabelValues(region).Set(float64(unresolved))
}
