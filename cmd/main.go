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

// Main entrypoint for the AMI inventory CLI.
//
// Coverage: run is covered by the unit tests in this package; main itself
// only wires process exit status and is tested via E2E tests.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nextdoor/ami-inventory/internal/logging"
	"github.com/nextdoor/ami-inventory/pkg/aws"
	"github.com/nextdoor/ami-inventory/pkg/config"
	"github.com/nextdoor/ami-inventory/pkg/inventory"
	"github.com/nextdoor/ami-inventory/pkg/metrics"
	"github.com/nextdoor/ami-inventory/pkg/report"
)

// configPathEnv overrides the --config flag.
const configPathEnv = config.EnvPrefix + "_CONFIG"

// options holds the command-line flags.
type options struct {
	configFile      string
	output          string
	logLevel        string
	logDevelopment  bool
	metricsTextfile string
}

// newClientFunc builds the AWS client; tests replace it with a mock.
var newClientFunc = func(ctx context.Context, cfg aws.ClientConfig) (aws.Client, error) {
	return aws.NewClient(ctx, cfg)
}

// coverage:ignore - main entrypoint, tested via E2E
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses args into options. Flags left unset defer to the
// configuration file and environment.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("ami-inventory", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "",
		"Path to an optional YAML configuration file. Can be overridden with "+configPathEnv+" environment variable.")
	fs.StringVar(&opts.output, "output", "", "Report format: json or yaml. Overrides the configured output.")
	fs.StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn or error. Overrides the configured log level.")
	fs.BoolVar(&opts.logDevelopment, "log-development", false,
		"Log human-readable console output instead of JSON.")
	fs.StringVar(&opts.metricsTextfile, "metrics-textfile", "",
		"Write run metrics to this path in the node_exporter textfile format.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// Allow environment variable to override config file path
	if envConfigPath := os.Getenv(configPathEnv); envConfigPath != "" {
		opts.configFile = envConfigPath
	}
	return opts, nil
}

// loadConfig loads the configuration and applies flag overrides. A config
// file that does not exist falls back to defaults; the returned bool
// reports that case so it can be logged once a logger exists.
func loadConfig(opts *options) (*config.Config, bool, error) {
	missing := false
	path := opts.configFile
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			missing = true
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, missing, err
	}

	if opts.output != "" {
		cfg.Output = opts.output
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.metricsTextfile != "" {
		cfg.MetricsTextfile = opts.metricsTextfile
	}
	if err := cfg.Validate(); err != nil {
		return nil, missing, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, missing, nil
}

// run performs one inventory and writes the report to stdout. A non-nil error
// means no report was written.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, configMissing, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Development: opts.logDevelopment, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	setupLog := log.WithName("setup")
	if configMissing {
		setupLog.Info("config file not found, using defaults", "config-file", opts.configFile)
	}
	setupLog.V(1).Info("loaded configuration",
		"default-region", cfg.DefaultRegion,
		"regions", cfg.Regions,
		"batch-size", cfg.BatchSize,
		"concurrency", cfg.Concurrency,
		"output", cfg.Output)

	if timeout := cfg.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	awsClient, err := newClientFunc(ctx, cfg.ClientConfig())
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	if err := checkIdentity(ctx, awsClient, cfg.AccountID, setupLog); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	inventoryMetrics := metrics.NewMetrics(registry)

	builder := &inventory.Builder{
		Client:      awsClient,
		BatchSize:   cfg.BatchSize,
		Regions:     cfg.Regions,
		Concurrency: cfg.Concurrency,
		Log:         log.WithName("inventory"),
		Metrics:     inventoryMetrics,
	}
	inv, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if err := report.Write(stdout, inv, cfg.Output); err != nil {
		return err
	}

	// The report is already out; a metrics export failure does not fail the run
	if cfg.MetricsTextfile != "" {
		if err := inventoryMetrics.WriteTextfile(cfg.MetricsTextfile, registry); err != nil {
			setupLog.Error(err, "failed to export metrics", "path", cfg.MetricsTextfile)
		}
	}

	return nil
}

// checkIdentity logs the account being inventoried. Only a mismatch with a
// configured account is fatal; STS being unreachable is a warning.
func checkIdentity(ctx context.Context, client aws.Client, expectedAccountID string, log logr.Logger) error {
	identity, err := aws.NewAccountValidator(client, expectedAccountID).ValidateAccess(ctx)
	switch {
	case errors.Is(err, aws.ErrAccountMismatch):
		return err
	case err != nil:
		log.Error(err, "could not determine caller identity, continuing")
	default:
		log.Info("inventorying account", "account", identity.AccountID, "arn", identity.ARN)
	}
	return nil
}
