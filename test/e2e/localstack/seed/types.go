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

// EC2Fixtures defines the images and instances to seed into LocalStack.
type EC2Fixtures struct {
	Images    []Image       `json:"images"`
	Instances []EC2Instance `json:"instances"`
}

// Image is an AMI registered in LocalStack before instances are launched.
type Image struct {
	// Key is how instances refer to this image; LocalStack assigns the AMI ID
	Key string `json:"key"`

	// Name is the AMI name (e.g., "ami-inventory-web")
	Name string `json:"name"`

	// Description provides context about the image
	Description string `json:"description"`

	// Region is the AWS region the image is registered in
	Region string `json:"region"`
}

// EC2Instance represents EC2 instances to be launched in LocalStack.
type EC2Instance struct {
	// ImageKey references an Image by Key
	ImageKey string `json:"image_key,omitempty"`

	// ImageID is used verbatim when ImageKey is empty, for instances whose
	// image is not registered (e.g., "ami-00000000deadbeef")
	ImageID string `json:"image_id,omitempty"`

	// InstanceType is the EC2 instance type (e.g., "t3.micro")
	InstanceType string `json:"instance_type"`

	// Count is the number of instances to launch
	Count int `json:"count"`

	// Region is the AWS region where the instance should be created
	Region string `json:"region"`

	// Tags are key-value pairs to tag the instance
	// Example: [{"Key": "Name", "Value": "test-instance"}]
	Tags []Tag `json:"tags"`
}

// Tag represents an AWS resource tag.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// Seeded records what was created, so tests can assert on IDs LocalStack assigned.
type Seeded struct {
	// Images maps fixture key to the AMI ID LocalStack assigned
	Images map[string]string

	// Instances maps region to image ID to the instance IDs launched from it
	Instances map[string]map[string][]string
}

func newSeeded() *Seeded {
	return &Seeded{
		Images:    make(map[string]string),
		Instances: make(map[string]map[string][]string),
	}
}

func (s *Seeded) addInstances(region, imageID string, instanceIDs ...string) {
	if s.Instances[region] == nil {
		s.Instances[region] = make(map[string][]string)
	}
	s.Instances[region][imageID] = append(s.Instances[region][imageID], instanceIDs...)
}
