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

// Package aws provides abstractions for interacting with AWS services.
//
// This file contains pure data structure definitions with no logic.
// These types are exercised through the mock client tests and the
// inventory package tests, so direct unit tests would provide no value.

package aws

// MaxDescribeImagesBatchSize is the largest number of image IDs sent in a
// single DescribeImages request.
const MaxDescribeImagesBatchSize = 100

// InstanceStateRunning is the EC2 instance state the inventory reports on.
const InstanceStateRunning = "running"

// Instance is the subset of an EC2 instance the inventory needs.
type Instance struct {
	// InstanceID is the EC2 instance ID (e.g., "i-abc123def456")
	InstanceID string

	// ImageID is the AMI the instance was launched from (e.g., "ami-0abc123")
	ImageID string
}

// Reservation groups instances launched by a single RunInstances request.
type Reservation struct {
	// ReservationID is the EC2 reservation ID (e.g., "r-0123456789abcdef0")
	ReservationID string

	// Instances are the instances in this reservation
	Instances []Instance
}

// InstancePage is one page of a DescribeInstances listing.
type InstancePage struct {
	Reservations []Reservation
}

// Image is the descriptive metadata of an AMI. Optional fields are nil when
// the EC2 API omits them.
type Image struct {
	// ImageID is the AMI ID (e.g., "ami-0abc123")
	ImageID string

	// Description is the free-form description set by the image owner
	Description *string

	// Name is the AMI name
	Name *string

	// ImageLocation is the location of the AMI manifest
	// (e.g., "amazon/al2023-ami-2023.6.20241010.0-kernel-6.1-x86_64")
	ImageLocation *string

	// OwnerID is the AWS account ID of the image owner
	OwnerID *string
}

// Identity is the caller identity of the credentials in use.
type Identity struct {
	// AccountID is the AWS account ID (e.g., "111111111111")
	AccountID string

	// ARN is the ARN of the calling principal
	ARN string

	// UserID is the unique identifier of the calling principal
	UserID string
}
