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

// Package utils provides test utilities for E2E tests.
//
// Coverage: Excluded - these utilities are only used by the E2E suite against
// a running LocalStack and are tested through actual E2E test execution.

package utils

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	. "github.com/onsi/ginkgo/v2" // nolint:revive,staticcheck

	"github.com/nextdoor/ami-inventory/test/e2e/localstack/seed"
)

const (
	// DefaultLocalStackEndpoint is used when LOCALSTACK_ENDPOINT is not set
	DefaultLocalStackEndpoint = "http://localhost:4566"

	// LocalStack accepts any credentials; these match its documented defaults
	localStackAccessKey = "test"
	localStackSecretKey = "test"
)

// Run executes the provided command from the project root and returns its
// stdout. Stderr is streamed to the GinkgoWriter so logs show up on failure.
func Run(cmd *exec.Cmd) (string, error) {
	dir, _ := GetProjectDir()
	cmd.Dir = dir

	command := strings.Join(cmd.Args, " ")
	_, _ = fmt.Fprintf(GinkgoWriter, "running: %q\n", command)

	var stdout strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = GinkgoWriter
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%q failed: %w", command, err)
	}

	return stdout.String(), nil
}

// GetProjectDir will return the directory where the project is
func GetProjectDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return wd, fmt.Errorf("failed to get current working directory: %w", err)
	}
	wd = strings.ReplaceAll(wd, "/test/e2e", "")
	return wd, nil
}

// BuildBinary compiles the CLI into dir and returns the binary path.
func BuildBinary(dir string) (string, error) {
	binary := filepath.Join(dir, "ami-inventory")
	cmd := exec.Command("go", "build", "-o", binary, "./cmd")
	if _, err := Run(cmd); err != nil {
		return "", fmt.Errorf("failed to build ami-inventory: %w", err)
	}
	return binary, nil
}

// LocalStackEndpoint returns the LocalStack endpoint under test.
func LocalStackEndpoint() string {
	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return DefaultLocalStackEndpoint
}

// IsLocalStackHealthy checks if LocalStack is running and answering its
// health endpoint.
func IsLocalStackHealthy(endpoint string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(endpoint + "/_localstack/health")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// LocalStackEnv returns the environment the CLI needs to talk to LocalStack.
func LocalStackEnv(endpoint string) []string {
	return append(os.Environ(),
		"AWS_ACCESS_KEY_ID="+localStackAccessKey,
		"AWS_SECRET_ACCESS_KEY="+localStackSecretKey,
		"AWS_REGION=us-east-1",
		"AMI_INVENTORY_ENDPOINT_URL="+endpoint,
	)
}

// SeedLocalStack seeds the fixture images and instances into LocalStack.
func SeedLocalStack(ctx context.Context, endpoint string) (*seed.Seeded, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithBaseEndpoint(endpoint),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(localStackAccessKey, localStackSecretKey, "")),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	seeded, err := seed.SeedAll(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to seed LocalStack: %w", err)
	}
	return seeded, nil
}
