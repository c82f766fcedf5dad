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

package seed

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadEC2Fixtures verifies that EC2 fixtures can be loaded from the embedded JSON file.
func TestLoadEC2Fixtures(t *testing.T) {
	fixtures, err := loadEC2Fixtures()
	require.NoError(t, err, "Failed to load EC2 fixtures")
	require.NotNil(t, fixtures, "Fixtures should not be nil")

	assert.NotEmpty(t, fixtures.Images, "Should have at least one image")
	assert.NotEmpty(t, fixtures.Instances, "Should have at least one instance")

	keys := make(map[string]bool)
	for _, image := range fixtures.Images {
		assert.NotEmpty(t, image.Name, "Image should have a name")
		assert.NotEmpty(t, image.Region, "Image should have a region")
		assert.False(t, keys[image.Key], "Image keys must be unique: %s", image.Key)
		keys[image.Key] = true
	}

	// Every instance resolves to an image, and at least one is unregistered
	// so the inventory has an image without metadata
	foundUnregistered := false
	for _, instance := range fixtures.Instances {
		_, err := resolveImageID(instance, map[string]string{"web": "ami-1", "batch": "ami-2", "worker": "ami-3"})
		assert.NoError(t, err)
		if instance.ImageKey == "" {
			foundUnregistered = true
		}
		assert.Positive(t, instance.Count)
	}
	assert.True(t, foundUnregistered, "Should find an instance launched from an unregistered image")
}

func TestResolveImageID(t *testing.T) {
	registered := map[string]string{"web": "ami-0123"}

	tests := []struct {
		name     string
		instance EC2Instance
		want     string
		wantErr  bool
	}{
		{name: "by key", instance: EC2Instance{ImageKey: "web"}, want: "ami-0123"},
		{name: "verbatim", instance: EC2Instance{ImageID: "ami-dead"}, want: "ami-dead"},
		{name: "unknown key", instance: EC2Instance{ImageKey: "db"}, wantErr: true},
		{name: "neither", instance: EC2Instance{Region: "us-east-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveImageID(tt.instance, registered)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeededAddInstances(t *testing.T) {
	seeded := newSeeded()
	seeded.addInstances("us-east-1", "ami-1", "i-1", "i-2")
	seeded.addInstances("us-east-1", "ami-1", "i-3")
	seeded.addInstances("us-west-2", "ami-2", "i-4")

	assert.Equal(t, []string{"i-1", "i-2", "i-3"}, seeded.Instances["us-east-1"]["ami-1"])
	assert.Equal(t, []string{"i-4"}, seeded.Instances["us-west-2"]["ami-2"])
}

// TestSeedEC2CancelledContext verifies that seeding stops on a cancelled context
// without reaching any endpoint.
func TestSeedEC2CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := aws.Config{
		Region:       "us-west-2",
		BaseEndpoint: aws.String("http://127.0.0.1:1"),
		Credentials:  aws.AnonymousCredentials{},
	}

	_, err := SeedEC2(ctx, cfg, &EC2Fixtures{Images: []Image{{Key: "web", Name: "web", Region: "us-west-2"}}})
	assert.Error(t, err)
}
