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

// Package report renders a RegionInventory for output.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/nextdoor/ami-inventory/pkg/config"
	"github.com/nextdoor/ami-inventory/pkg/inventory"
)

// indent is the JSON indentation used for reports.
const indent = "    "

// Write renders inv to w in the given format (config.OutputJSON or
// config.OutputYAML). An empty format means JSON.
func Write(w io.Writer, inv inventory.RegionInventory, format string) error {
	if inv == nil {
		inv = inventory.RegionInventory{}
	}

	var (
		out []byte
		err error
	)
	switch format {
	case "", config.OutputJSON:
		out, err = json.MarshalIndent(inv, "", indent)
		out = append(out, '\n')
	case config.OutputYAML:
		out, err = yaml.Marshal(inv)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to render inventory as %s: %w", format, err)
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	return nil
}
