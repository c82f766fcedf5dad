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
	"sync"
)

// MockClient is a mock implementation of the Client interface for testing.
// It provides configurable responses and tracks method calls.
type MockClient struct {
	mu sync.RWMutex

	// DefaultRegion is the region used when EC2 is called with an empty region
	DefaultRegion string

	// EC2Clients maps region to MockEC2Client
	EC2Clients map[string]*MockEC2Client

	// EC2Errors maps region to the error EC2() returns for that region
	EC2Errors map[string]error

	// EC2Calls records the (resolved) region of every EC2() call, in call order
	EC2Calls []string

	// Identity is returned by CallerIdentity
	Identity *Identity

	// CallerIdentityError can be set to simulate STS failures
	CallerIdentityError error
}

// NewMockClient creates a new MockClient with initialized maps.
func NewMockClient(defaultRegion string) *MockClient {
	return &MockClient{
		DefaultRegion: defaultRegion,
		EC2Clients:    make(map[string]*MockEC2Client),
		EC2Errors:     make(map[string]error),
		EC2Calls:      []string{},
		Identity: &Identity{
			AccountID: "123456789012",
			ARN:       "arn:aws:iam::123456789012:user/test",
			UserID:    "AIDATEST",
		},
	}
}

// EC2 returns the mock EC2Client for the region, creating an empty one if needed.
func (m *MockClient) EC2(_ context.Context, region string) (EC2Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if region == "" {
		region = m.DefaultRegion
	}
	m.EC2Calls = append(m.EC2Calls, region)

	if err := m.EC2Errors[region]; err != nil {
		return nil, err
	}
	if region == "" {
		return nil, ErrNoRegion
	}

	client, exists := m.EC2Clients[region]
	if !exists {
		client = NewMockEC2Client(region)
		m.EC2Clients[region] = client
	}

	return client, nil
}

// Region returns (creating if needed) the mock EC2 client for a region.
// Tests use it to seed data before running code under test.
func (m *MockClient) Region(region string) *MockEC2Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, exists := m.EC2Clients[region]
	if !exists {
		client = NewMockEC2Client(region)
		m.EC2Clients[region] = client
	}
	return client
}

// CallerIdentity returns the mock identity.
func (m *MockClient) CallerIdentity(_ context.Context) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.CallerIdentityError != nil {
		return nil, m.CallerIdentityError
	}
	return m.Identity, nil
}

// MockEC2Client is a mock implementation of EC2Client for testing.
type MockEC2Client struct {
	mu sync.RWMutex

	// RegionName is the region this mock is scoped to
	RegionName string

	// Regions is returned by DescribeRegions
	Regions []string

	// Pages is served, in order, by InstancePager
	Pages []InstancePage

	// Images is the mock image catalog; DescribeImages returns the entries
	// whose ImageID was requested
	Images []Image

	// Error injection for testing error paths
	DescribeRegionsError error

	// NextPageError is returned instead of page NextPageErrorAt
	NextPageError   error
	NextPageErrorAt int

	// DescribeImagesErrors maps a DescribeImages call index (0-based) to the
	// error that call returns
	DescribeImagesErrors map[int]error

	// Call tracking
	DescribeRegionsCallCount int
	InstancePagerCallCount   int
	DescribeImagesCalls      [][]string
}

// NewMockEC2Client creates a new MockEC2Client.
func NewMockEC2Client(region string) *MockEC2Client {
	return &MockEC2Client{
		RegionName:           region,
		Regions:              []string{},
		Pages:                []InstancePage{},
		Images:               []Image{},
		DescribeImagesErrors: make(map[int]error),
		DescribeImagesCalls:  [][]string{},
	}
}

// Region returns the region this mock is scoped to.
func (m *MockEC2Client) Region() string {
	return m.RegionName
}

// DescribeRegions returns the mock region list.
func (m *MockEC2Client) DescribeRegions(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeRegionsCallCount++

	if m.DescribeRegionsError != nil {
		return nil, m.DescribeRegionsError
	}
	return append([]string(nil), m.Regions...), nil
}

// InstancePager returns a pager over the mock pages.
func (m *MockEC2Client) InstancePager() InstancePager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InstancePagerCallCount++

	return &MockInstancePager{
		Pages:   m.Pages,
		Err:     m.NextPageError,
		ErrAt:   m.NextPageErrorAt,
		Pending: true,
	}
}

// DescribeImages records the request and returns the matching mock images.
func (m *MockEC2Client) DescribeImages(_ context.Context, imageIDs []string) ([]Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.DescribeImagesCalls)
	m.DescribeImagesCalls = append(m.DescribeImagesCalls, append([]string(nil), imageIDs...))

	if err := m.DescribeImagesErrors[call]; err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(imageIDs))
	for _, id := range imageIDs {
		requested[id] = true
	}

	images := []Image{}
	for _, img := range m.Images {
		if requested[img.ImageID] {
			images = append(images, img)
		}
	}
	return images, nil
}

// MockInstancePager serves a fixed list of pages, optionally failing at
// page index ErrAt.
type MockInstancePager struct {
	Pages []InstancePage
	Err   error
	ErrAt int

	// Pending is cleared once the pager has returned its error
	Pending bool

	next int
}

// NewMockInstancePager returns a pager over the given pages.
func NewMockInstancePager(pages ...InstancePage) *MockInstancePager {
	return &MockInstancePager{Pages: pages, Pending: true}
}

// HasMorePages reports whether another page (or the injected error) remains.
func (p *MockInstancePager) HasMorePages() bool {
	if p.Err != nil && p.Pending && p.next == p.ErrAt {
		return true
	}
	return p.next < len(p.Pages)
}

// NextPage returns the next page, or the injected error.
func (p *MockInstancePager) NextPage(_ context.Context) (*InstancePage, error) {
	if p.Err != nil && p.Pending && p.next == p.ErrAt {
		p.Pending = false
		return nil, p.Err
	}
	if p.next >= len(p.Pages) {
		return &InstancePage{}, nil
	}
	page := p.Pages[p.next]
	p.next++
	return &page, nil
}
