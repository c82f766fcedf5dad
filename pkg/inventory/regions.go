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
	"github.com/go-logr/logr"
)

// SelectRegions applies an optional allowlist to the enabled regions.
// With an empty allowlist every enabled region is returned. Otherwise the
// enabled regions that are allowlisted are returned in enabled order, and
// allowlisted regions the account does not have enabled are logged.
func SelectRegions(enabled, allowlist []string, log logr.Logger) []string {
	if len(allowlist) == 0 {
		return enabled
	}

	allowed := make(map[string]bool, len(allowlist))
	for _, region := range allowlist {
		allowed[region] = true
	}

	selected := make([]string, 0, len(allowlist))
	found := make(map[string]bool, len(allowlist))
	for _, region := range enabled {
		if allowed[region] {
			selected = append(selected, region)
			found[region] = true
		}
	}

	for _, region := range allowlist {
		if !found[region] {
			log.Info("skipping configured region that is not enabled for the account", "region", region)
		}
	}

	return selected
}
