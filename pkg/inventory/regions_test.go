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
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
)

func TestSelectRegions(t *testing.T) {
	enabled := []string{"us-east-1", "us-west-2", "eu-west-1"}

	tests := []struct {
		name      string
		allowlist []string
		want      []string
	}{
		{name: "no allowlist", allowlist: nil, want: enabled},
		{name: "subset keeps enabled order", allowlist: []string{"eu-west-1", "us-east-1"}, want: []string{"us-east-1", "eu-west-1"}},
		{name: "unknown regions dropped", allowlist: []string{"ap-south-1", "us-west-2"}, want: []string{"us-west-2"}},
		{name: "nothing enabled", allowlist: []string{"ap-south-1"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectRegions(enabled, tt.allowlist, logr.Discard()))
		})
	}
}

func TestSelectRegions_LogsDisabledRegions(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{})

	SelectRegions([]string{"us-east-1"}, []string{"us-east-1", "ap-south-1"}, log)

	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ap-south-1")
}
