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
	"embed"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

//go:embed testdata/ec2.json
var ec2FixturesFS embed.FS

// SeedEC2 registers the fixture images and launches the fixture instances.
//
// The function:
//  1. Registers every image in its region, recording the assigned AMI ID
//  2. Launches instances from those images (or from a verbatim image ID)
//
// Returns an error if any operation fails.
func SeedEC2(ctx context.Context, cfg aws.Config, fixtures *EC2Fixtures) (*Seeded, error) {
	seeded := newSeeded()
	clients := make(map[string]*ec2.Client)
	clientFor := func(region string) *ec2.Client {
		if client, ok := clients[region]; ok {
			return client
		}
		regionCfg := cfg.Copy()
		if region != "" {
			regionCfg.Region = region
		}
		clients[region] = ec2.NewFromConfig(regionCfg)
		return clients[region]
	}

	for _, image := range fixtures.Images {
		imageID, err := registerImage(ctx, clientFor(image.Region), image)
		if err != nil {
			return nil, err
		}
		seeded.Images[image.Key] = imageID
	}

	for _, instance := range fixtures.Instances {
		imageID, err := resolveImageID(instance, seeded.Images)
		if err != nil {
			return nil, err
		}

		instanceIDs, err := launchInstances(ctx, clientFor(instance.Region), instance, imageID)
		if err != nil {
			return nil, err
		}
		seeded.addInstances(instance.Region, imageID, instanceIDs...)
	}

	return seeded, nil
}

// loadEC2Fixtures loads EC2 fixtures from the embedded testdata/ec2.json file.
func loadEC2Fixtures() (*EC2Fixtures, error) {
	data, err := ec2FixturesFS.ReadFile("testdata/ec2.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read ec2.json: %w", err)
	}

	var fixtures EC2Fixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse ec2.json: %w", err)
	}

	return &fixtures, nil
}

// resolveImageID returns the AMI an instance fixture launches from.
func resolveImageID(instance EC2Instance, registered map[string]string) (string, error) {
	if instance.ImageKey == "" {
		if instance.ImageID == "" {
			return "", fmt.Errorf("instance fixture in %s has neither image_key nor image_id", instance.Region)
		}
		return instance.ImageID, nil
	}

	imageID, ok := registered[instance.ImageKey]
	if !ok {
		return "", fmt.Errorf("instance fixture references unknown image %q", instance.ImageKey)
	}
	return imageID, nil
}

// registerImage registers a single AMI and returns its ID.
func registerImage(ctx context.Context, client *ec2.Client, image Image) (string, error) {
	out, err := client.RegisterImage(ctx, &ec2.RegisterImageInput{
		Name:        aws.String(image.Name),
		Description: aws.String(image.Description),
	})
	if err != nil {
		return "", fmt.Errorf("failed to register image %s in %s: %w", image.Name, image.Region, err)
	}
	return aws.ToString(out.ImageId), nil
}

// launchInstances launches one instance fixture.
// Note: This function is NOT idempotent - it will create new instances on each run.
func launchInstances(ctx context.Context, client *ec2.Client, instance EC2Instance, imageID string) ([]string, error) {
	// Convert tags to EC2 tag specification format
	tagSpecs := []types.TagSpecification{}
	if len(instance.Tags) > 0 {
		ec2Tags := make([]types.Tag, len(instance.Tags))
		for i, tag := range instance.Tags {
			ec2Tags[i] = types.Tag{
				Key:   aws.String(tag.Key),
				Value: aws.String(tag.Value),
			}
		}
		tagSpecs = append(tagSpecs, types.TagSpecification{
			ResourceType: types.ResourceTypeInstance,
			Tags:         ec2Tags,
		})
	}

	out, err := client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:           aws.String(imageID),
		InstanceType:      types.InstanceType(instance.InstanceType),
		MinCount:          aws.Int32(int32(instance.Count)),
		MaxCount:          aws.Int32(int32(instance.Count)),
		TagSpecifications: tagSpecs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch instances (image: %s, type: %s, count: %d): %w",
			imageID, instance.InstanceType, instance.Count, err)
	}

	instanceIDs := make([]string, 0, len(out.Instances))
	for _, inst := range out.Instances {
		instanceIDs = append(instanceIDs, aws.ToString(inst.InstanceId))
	}
	return instanceIDs, nil
}
