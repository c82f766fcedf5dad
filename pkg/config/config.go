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

// Package config provides configuration management for the AMI inventory tool.
//
// Every setting is optional: with no file and no environment the tool inventories
// all regions of the account behind the default AWS credential chain and prints
// the report as JSON. Configuration can be supplied from a YAML file and
// overridden by environment variables. Uses Viper for robust configuration
// management with automatic env binding.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nextdoor/ami-inventory/pkg/aws"
)

// Config represents the complete tool configuration.
type Config struct {
	// DefaultRegion is the region used for region-independent calls such as
	// DescribeRegions. If empty, the AWS SDK default region resolution applies
	// (AWS_REGION, AWS_DEFAULT_REGION, shared config profile).
	DefaultRegion string `yaml:"defaultRegion,omitempty"`

	// Regions restricts the inventory to these regions. Regions that the
	// account does not have enabled are skipped with a warning.
	// If empty, every enabled region is inventoried.
	Regions []string `yaml:"regions,omitempty"`

	// BatchSize is the number of image IDs sent per DescribeImages call.
	// Must be between 1 and aws.MaxDescribeImagesBatchSize.
	// Default: aws.MaxDescribeImagesBatchSize (100)
	BatchSize int `yaml:"batchSize,omitempty"`

	// Concurrency is how many regions are inventoried at once.
	// Default: 1 (sequential)
	Concurrency int `yaml:"concurrency,omitempty"`

	// Timeout bounds the whole run.
	// Format: Go duration string (e.g., "10m")
	// Default: no timeout
	Timeout string `yaml:"timeout,omitempty"`

	// AccountID, when set, is the AWS account the credentials must resolve to.
	// The run aborts before inventorying anything if they resolve elsewhere.
	AccountID string `yaml:"accountId,omitempty"`

	// AssumeRoleARN is an optional IAM role ARN assumed on top of the default
	// credential chain. Format: arn:aws:iam::ACCOUNT_ID:role/ROLE_NAME
	AssumeRoleARN string `yaml:"assumeRoleArn,omitempty"`

	// ExternalID is an optional external ID for the AssumeRole call.
	ExternalID string `yaml:"externalId,omitempty"`

	// SessionName is the AssumeRole session name.
	// Default: aws.DefaultSessionName
	SessionName string `yaml:"sessionName,omitempty"`

	// MaxRetries is the maximum number of attempts the AWS SDK makes per call.
	// Default: 0 (SDK default)
	MaxRetries int `yaml:"maxRetries,omitempty"`

	// IncludeAllStates lists instances in every state (stopped, pending, ...)
	// instead of only running instances.
	IncludeAllStates bool `yaml:"includeAllStates,omitempty"`

	// EndpointURL overrides the AWS endpoints. Used for LocalStack testing.
	EndpointURL string `yaml:"endpointUrl,omitempty"`

	// LogLevel controls the verbosity of logs.
	// Valid values: debug, info, warn, error
	// Default: info
	LogLevel string `yaml:"logLevel,omitempty"`

	// Output is the report format written to stdout.
	// Valid values: json, yaml
	// Default: json
	Output string `yaml:"output,omitempty"`

	// MetricsTextfile, when set, is the path the run's Prometheus metrics are
	// written to in the node_exporter textfile format.
	MetricsTextfile string `yaml:"metricsTextfile,omitempty"`
}

// Load loads configuration and validates it.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (AMI_INVENTORY_* prefix)
//  2. Configuration file values (skipped when path is empty)
//  3. Default values
//
// For example:
//   - AMI_INVENTORY_DEFAULT_REGION overrides defaultRegion
//   - AMI_INVENTORY_REGIONS="us-east-1,eu-west-1" overrides regions
//   - AMI_INVENTORY_BATCH_SIZE overrides batchSize
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("batchSize", aws.MaxDescribeImagesBatchSize)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("logLevel", DefaultLogLevel)
	v.SetDefault("output", DefaultOutput)

	// Viper's automatic mapping doesn't handle camelCase to SCREAMING_SNAKE_CASE well,
	// so every key is bound to its environment variable explicitly
	v.SetEnvPrefix(EnvPrefix)
	for key, env := range envBindings() {
		_ = v.BindEnv(key, env)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	// coverage:ignore - Viper unmarshal errors are extremely rare and difficult to trigger
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envBindings maps config keys to their environment variables.
func envBindings() map[string]string {
	keys := []string{
		"defaultRegion",
		"regions",
		"batchSize",
		"concurrency",
		"timeout",
		"accountId",
		"assumeRoleArn",
		"externalId",
		"sessionName",
		"maxRetries",
		"includeAllStates",
		"endpointUrl",
		"logLevel",
		"output",
		"metricsTextfile",
	}

	bindings := make(map[string]string, len(keys))
	for _, key := range keys {
		bindings[key] = EnvPrefix + "_" + toScreamingSnake(key)
	}
	return bindings
}

// toScreamingSnake converts a camelCase key to SCREAMING_SNAKE_CASE.
// Acronyms are not special-cased: "endpointUrl" becomes "ENDPOINT_URL".
func toScreamingSnake(key string) string {
	var b strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Validate checks that the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.BatchSize < 1 || c.BatchSize > aws.MaxDescribeImagesBatchSize {
		return fmt.Errorf("invalid batch size %d, must be between 1 and %d",
			c.BatchSize, aws.MaxDescribeImagesBatchSize)
	}

	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		return fmt.Errorf("invalid concurrency %d, must be between 1 and %d", c.Concurrency, MaxConcurrency)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries %d, must not be negative", c.MaxRetries)
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
		}
	}

	// Validate regions
	seen := make(map[string]bool, len(c.Regions))
	for _, region := range c.Regions {
		if !isValidRegionName(region) {
			return fmt.Errorf("invalid region %q", region)
		}
		if seen[region] {
			return fmt.Errorf("duplicate region: %s", region)
		}
		seen[region] = true
	}
	if c.DefaultRegion != "" && !isValidRegionName(c.DefaultRegion) {
		return fmt.Errorf("invalid default region %q", c.DefaultRegion)
	}

	if c.AccountID != "" && !isValidAccountID(c.AccountID) {
		return fmt.Errorf("invalid account ID %q: must be 12 digits", c.AccountID)
	}

	// Validate AssumeRole ARN format
	if c.AssumeRoleARN != "" && !isValidIAMRoleARN(c.AssumeRoleARN) {
		return fmt.Errorf(
			"invalid AssumeRole ARN %q: must be in format arn:aws:iam::ACCOUNT_ID:role/ROLE_NAME",
			c.AssumeRoleARN,
		)
	}
	if c.AssumeRoleARN == "" && (c.ExternalID != "" || c.SessionName != "") {
		return fmt.Errorf("externalId and sessionName require assumeRoleArn")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.Output != OutputJSON && c.Output != OutputYAML {
		return fmt.Errorf("invalid output %q, must be one of: %s, %s", c.Output, OutputJSON, OutputYAML)
	}

	return nil
}

// GetTimeout returns the parsed run timeout, or 0 when no timeout is configured.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		// Should never happen since Validate() checks this
		return 0
	}
	return d
}

// ClientConfig returns the AWS client configuration derived from c.
func (c *Config) ClientConfig() aws.ClientConfig {
	return aws.ClientConfig{
		DefaultRegion:    c.DefaultRegion,
		AssumeRoleARN:    c.AssumeRoleARN,
		ExternalID:       c.ExternalID,
		SessionName:      c.SessionName,
		MaxRetries:       c.MaxRetries,
		IncludeAllStates: c.IncludeAllStates,
		EndpointURL:      c.EndpointURL,
	}
}

// isValidRegionName checks if a string looks like an AWS region name
// (e.g., "us-west-2", "ap-southeast-1", "us-gov-west-1").
func isValidRegionName(region string) bool {
	matched, _ := regexp.MatchString(`^[a-z]{2}(-[a-z]+)+-\d+$`, region)
	return matched
}

// isValidAccountID checks if a string is a 12-digit AWS account ID.
func isValidAccountID(accountID string) bool {
	matched, _ := regexp.MatchString(`^\d{12}$`, accountID)
	return matched
}

// isValidIAMRoleARN checks if a string is a valid IAM role ARN.
// Valid format: arn:aws:iam::123456789012:role/RoleName
// Also accepts: arn:aws-us-gov:iam::... for GovCloud
func isValidIAMRoleARN(arn string) bool {
	// Partition can be "aws" or "aws-us-gov" or "aws-cn"
	matched, _ := regexp.MatchString(`^arn:(aws|aws-us-gov|aws-cn):iam::\d{12}:role/[a-zA-Z0-9+=,.@\-_/]+$`, arn)
	return matched
}
