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

package config

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "AMI_INVENTORY"

// Default values applied by Load when a key is not set.
const (
	DefaultLogLevel    = "info"
	DefaultOutput      = OutputJSON
	DefaultConcurrency = 1
)

// Output formats accepted by Config.Output.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// MaxConcurrency caps how many regions may be inventoried at once.
const MaxConcurrency = 32
