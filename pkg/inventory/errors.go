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
	"errors"

	"github.com/aws/smithy-go"
)

// errorDetails returns extra log key/value pairs for AWS API errors so a
// warning names the failing operation and the AWS error code.
func errorDetails(err error) []any {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	details := []any{"error_code", apiErr.ErrorCode()}

	var opErr *smithy.OperationError
	if errors.As(err, &opErr) {
		details = append(details, "operation", opErr.Operation())
	}
	return details
}
