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

package aws

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

const (
	testLocalStackEndpoint = "http://localhost:4566"
	testRegion             = "us-west-2"
)

// fakeEC2API serves canned SDK responses and records the inputs it receives.
type fakeEC2API struct {
	instancePages  []*ec2.DescribeInstancesOutput
	instancesError error
	instanceInputs []*ec2.DescribeInstancesInput

	images       []types.Image
	imagesError  error
	imagesInputs []*ec2.DescribeImagesInput

	regions      []types.Region
	regionsError error
}

func (f *fakeEC2API) DescribeInstances(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.instanceInputs = append(f.instanceInputs, params)
	if f.instancesError != nil {
		return nil, f.instancesError
	}
	return f.instancePages[len(f.instanceInputs)-1], nil
}

func (f *fakeEC2API) DescribeImages(_ context.Context, params *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.imagesInputs = append(f.imagesInputs, params)
	if f.imagesError != nil {
		return nil, f.imagesError
	}
	return &ec2.DescribeImagesOutput{Images: f.images}, nil
}

func (f *fakeEC2API) DescribeRegions(_ context.Context, _ *ec2.DescribeRegionsInput, _ ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	if f.regionsError != nil {
		return nil, f.regionsError
	}
	return &ec2.DescribeRegionsOutput{Regions: f.regions}, nil
}

// TestNewRealEC2Client tests that NewRealEC2Client creates a valid client.
func TestNewRealEC2Client(t *testing.T) {
	client := NewRealEC2Client(aws.Config{Region: testRegion}, "", false)

	if client == nil {
		t.Fatal("expected non-nil client")
	}
	if client.Region() != testRegion {
		t.Errorf("expected region %s, got %s", testRegion, client.Region())
	}
	if client.client == nil {
		t.Error("expected non-nil EC2 SDK client")
	}
}

// TestNewRealEC2ClientWithEndpoint tests client creation with custom endpoint.
func TestNewRealEC2ClientWithEndpoint(t *testing.T) {
	client := NewRealEC2Client(aws.Config{Region: "eu-west-1"}, testLocalStackEndpoint, true)

	sdkClient, ok := client.client.(*ec2.Client)
	if !ok {
		t.Fatalf("expected *ec2.Client, got %T", client.client)
	}
	if got := aws.ToString(sdkClient.Options().BaseEndpoint); got != testLocalStackEndpoint {
		t.Errorf("expected BaseEndpoint %s, got %s", testLocalStackEndpoint, got)
	}
	if !client.includeAllStates {
		t.Error("expected includeAllStates to be set")
	}
}

func TestRealEC2Client_DescribeRegions(t *testing.T) {
	fake := &fakeEC2API{
		regions: []types.Region{
			{RegionName: aws.String("us-east-1")},
			{RegionName: nil},
			{RegionName: aws.String("eu-west-1")},
		},
	}
	client := &RealEC2Client{client: fake, region: testRegion}

	regions, err := client.DescribeRegions(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	want := []string{"us-east-1", "eu-west-1"}
	if strings.Join(regions, ",") != strings.Join(want, ",") {
		t.Errorf("expected regions %v, got %v", want, regions)
	}
}

func TestRealEC2Client_DescribeRegionsError(t *testing.T) {
	fake := &fakeEC2API{regionsError: errors.New("UnauthorizedOperation")}
	client := &RealEC2Client{client: fake, region: testRegion}

	_, err := client.DescribeRegions(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to describe regions") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestRealEC2Client_InstancePager(t *testing.T) {
	fake := &fakeEC2API{
		instancePages: []*ec2.DescribeInstancesOutput{
			{
				Reservations: []types.Reservation{
					{
						ReservationId: aws.String("r-1"),
						Instances: []types.Instance{
							{InstanceId: aws.String("i-abc"), ImageId: aws.String("ami-123")},
							{InstanceId: aws.String("i-def"), ImageId: aws.String("ami-123")},
						},
					},
				},
				NextToken: aws.String("token-1"),
			},
			{
				Reservations: []types.Reservation{
					{
						ReservationId: aws.String("r-2"),
						Instances: []types.Instance{
							{InstanceId: aws.String("i-xyz"), ImageId: nil},
						},
					},
				},
			},
		},
	}
	client := &RealEC2Client{client: fake, region: testRegion}

	pager := client.InstancePager()
	var instances []Instance
	for pager.HasMorePages() {
		page, err := pager.NextPage(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, res := range page.Reservations {
			instances = append(instances, res.Instances...)
		}
	}

	if len(fake.instanceInputs) != 2 {
		t.Fatalf("expected 2 DescribeInstances calls, got %d", len(fake.instanceInputs))
	}
	if got := aws.ToString(fake.instanceInputs[1].NextToken); got != "token-1" {
		t.Errorf("expected second call to carry token-1, got %q", got)
	}

	want := []Instance{
		{InstanceID: "i-abc", ImageID: "ami-123"},
		{InstanceID: "i-def", ImageID: "ami-123"},
		{InstanceID: "i-xyz", ImageID: ""},
	}
	if len(instances) != len(want) {
		t.Fatalf("expected %d instances, got %d", len(want), len(instances))
	}
	for i := range want {
		if instances[i] != want[i] {
			t.Errorf("instance %d: expected %+v, got %+v", i, want[i], instances[i])
		}
	}
}

func TestRealEC2Client_InstancePagerStateFilter(t *testing.T) {
	tests := []struct {
		name             string
		includeAllStates bool
		expectFilter     bool
	}{
		{name: "running only by default", includeAllStates: false, expectFilter: true},
		{name: "all states", includeAllStates: true, expectFilter: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEC2API{instancePages: []*ec2.DescribeInstancesOutput{{}}}
			client := &RealEC2Client{client: fake, region: testRegion, includeAllStates: tt.includeAllStates}

			if _, err := client.InstancePager().NextPage(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			filters := fake.instanceInputs[0].Filters
			if !tt.expectFilter {
				if len(filters) != 0 {
					t.Errorf("expected no filters, got %v", filters)
				}
				return
			}
			if len(filters) != 1 {
				t.Fatalf("expected 1 filter, got %d", len(filters))
			}
			if aws.ToString(filters[0].Name) != "instance-state-name" {
				t.Errorf("unexpected filter name %q", aws.ToString(filters[0].Name))
			}
			if len(filters[0].Values) != 1 || filters[0].Values[0] != InstanceStateRunning {
				t.Errorf("unexpected filter values %v", filters[0].Values)
			}
		})
	}
}

func TestRealEC2Client_InstancePagerError(t *testing.T) {
	fake := &fakeEC2API{instancesError: errors.New("RequestLimitExceeded")}
	client := &RealEC2Client{client: fake, region: testRegion}

	_, err := client.InstancePager().NextPage(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to describe instances in us-west-2") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestRealEC2Client_DescribeImages(t *testing.T) {
	fake := &fakeEC2API{
		images: []types.Image{
			{
				ImageId:       aws.String("ami-123"),
				Description:   aws.String("Test AMI 1"),
				Name:          aws.String("test-ami-1"),
				ImageLocation: aws.String("aws-marketplace/test1"),
				OwnerId:       aws.String("123456789012"),
			},
			{ImageId: aws.String("ami-456")},
		},
	}
	client := &RealEC2Client{client: fake, region: testRegion}

	images, err := client.DescribeImages(context.Background(), []string{"ami-123", "ami-456"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if got := fake.imagesInputs[0].ImageIds; len(got) != 2 || got[0] != "ami-123" || got[1] != "ami-456" {
		t.Errorf("expected ImageIds [ami-123 ami-456], got %v", got)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if aws.ToString(images[0].Name) != "test-ami-1" || aws.ToString(images[0].OwnerID) != "123456789012" {
		t.Errorf("unexpected first image: %+v", images[0])
	}
	if images[1].ImageID != "ami-456" {
		t.Errorf("expected ami-456, got %s", images[1].ImageID)
	}
	if images[1].Name != nil || images[1].Description != nil || images[1].ImageLocation != nil || images[1].OwnerID != nil {
		t.Errorf("expected absent fields to stay nil, got %+v", images[1])
	}
}

func TestRealEC2Client_DescribeImagesError(t *testing.T) {
	fake := &fakeEC2API{imagesError: errors.New("InvalidAMIID.Malformed")}
	client := &RealEC2Client{client: fake, region: testRegion}

	_, err := client.DescribeImages(context.Background(), []string{"ami-bad"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to describe 1 images in us-west-2") {
		t.Errorf("unexpected error message: %v", err)
	}
}
