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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// ec2API is the subset of *ec2.Client used by RealEC2Client.
type ec2API interface {
	ec2.DescribeInstancesAPIClient
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// RealEC2Client is a production implementation of EC2Client that makes
// real API calls to AWS EC2 using the AWS SDK v2.
type RealEC2Client struct {
	client           ec2API
	region           string
	includeAllStates bool
}

// NewRealEC2Client creates a new EC2 client from an already region-scoped
// aws.Config. The credentials on cfg come from either the default credential
// chain or an STS AssumeRole provider.
func NewRealEC2Client(cfg aws.Config, endpointURL string, includeAllStates bool) *RealEC2Client {
	ec2Opts := []func(*ec2.Options){}
	if endpointURL != "" {
		// Override endpoint for LocalStack testing
		// This branch is exercised by the e2e suite
		ec2Opts = append(ec2Opts, func(o *ec2.Options) {
			o.BaseEndpoint = &endpointURL
		})
	}

	return &RealEC2Client{
		client:           ec2.NewFromConfig(cfg, ec2Opts...),
		region:           cfg.Region,
		includeAllStates: includeAllStates,
	}
}

// Region returns the region this client is scoped to.
func (c *RealEC2Client) Region() string {
	return c.region
}

// DescribeRegions returns all regions enabled for the account.
func (c *RealEC2Client) DescribeRegions(ctx context.Context) ([]string, error) {
	out, err := c.client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, region := range out.Regions {
		if region.RegionName != nil {
			regions = append(regions, *region.RegionName)
		}
	}
	return regions, nil
}

// InstancePager returns a pager over DescribeInstances. Unless the client was
// created with includeAllStates, only running instances are listed.
func (c *RealEC2Client) InstancePager() InstancePager {
	input := &ec2.DescribeInstancesInput{}
	if !c.includeAllStates {
		input.Filters = []types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{InstanceStateRunning},
			},
		}
	}

	return &sdkInstancePager{
		paginator: ec2.NewDescribeInstancesPaginator(c.client, input),
		region:    c.region,
	}
}

// DescribeImages returns metadata for the requested image IDs.
func (c *RealEC2Client) DescribeImages(ctx context.Context, imageIDs []string) ([]Image, error) {
	out, err := c.client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		ImageIds: imageIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe %d images in %s: %w", len(imageIDs), c.region, err)
	}

	images := make([]Image, 0, len(out.Images))
	for _, img := range out.Images {
		images = append(images, convertImage(img))
	}
	return images, nil
}

// sdkInstancePager adapts ec2.DescribeInstancesPaginator to InstancePager.
type sdkInstancePager struct {
	paginator *ec2.DescribeInstancesPaginator
	region    string
}

func (p *sdkInstancePager) HasMorePages() bool {
	return p.paginator.HasMorePages()
}

func (p *sdkInstancePager) NextPage(ctx context.Context) (*InstancePage, error) {
	out, err := p.paginator.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances in %s: %w", p.region, err)
	}

	page := &InstancePage{
		Reservations: make([]Reservation, 0, len(out.Reservations)),
	}
	for _, res := range out.Reservations {
		page.Reservations = append(page.Reservations, convertReservation(res))
	}
	return page, nil
}

// convertReservation converts an SDK reservation into our Reservation type.
func convertReservation(res types.Reservation) Reservation {
	instances := make([]Instance, 0, len(res.Instances))
	for _, inst := range res.Instances {
		instances = append(instances, Instance{
			InstanceID: aws.ToString(inst.InstanceId),
			ImageID:    aws.ToString(inst.ImageId),
		})
	}
	return Reservation{
		ReservationID: aws.ToString(res.ReservationId),
		Instances:     instances,
	}
}

// convertImage converts an SDK image into our Image type, keeping absent
// optional fields as nil.
func convertImage(img types.Image) Image {
	return Image{
		ImageID:       aws.ToString(img.ImageId),
		Description:   img.Description,
		Name:          img.Name,
		ImageLocation: img.ImageLocation,
		OwnerID:       img.OwnerId,
	}
}
