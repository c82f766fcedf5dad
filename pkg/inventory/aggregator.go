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

package inventory

import (
	"context"
	"fmt"

	"github.com/nextdoor/ami-inventory/pkg/aws"
)

// AggregateInstances drains pager and groups instance IDs by image ID.
//
// Instances are visited in page, reservation, instance order and their IDs
// are appended in that order. A paging error aborts the aggregation and is
// returned; no partial Result is returned alongside it.
func AggregateInstances(ctx context.Context, pager aws.InstancePager) (*Result, error) {
	result := NewResult()

	for page := 0; pager.HasMorePages(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list instances (page %d): %w", page, err)
		}

		for _, reservation := range out.Reservations {
			for _, instance := range reservation.Instances {
				result.GetOrCreate(instance.ImageID).AddInstance(instance.InstanceID)
			}
		}
	}

	return result, nil
}
