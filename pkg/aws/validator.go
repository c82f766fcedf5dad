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
	"fmt"
)

// ErrAccountMismatch is returned when the credentials in use belong to a
// different account than the one the run was configured for.
var ErrAccountMismatch = errors.New("credentials resolve to an unexpected AWS account")

// Validator checks which AWS identity a run is about to inventory.
type Validator interface {
	// ValidateAccess resolves the caller identity and checks it against the
	// expected account, if any. The identity is returned whenever it could be
	// resolved, even on a mismatch.
	ValidateAccess(ctx context.Context) (*Identity, error)
}

// AccountValidator implements the Validator interface using STS.
type AccountValidator struct {
	client            Client
	expectedAccountID string
}

// NewAccountValidator creates a new AccountValidator. An empty
// expectedAccountID accepts any account.
func NewAccountValidator(client Client, expectedAccountID string) *AccountValidator {
	return &AccountValidator{
		client:            client,
		expectedAccountID: expectedAccountID,
	}
}

// ValidateAccess calls STS GetCallerIdentity, which needs no permissions, so a
// failure here points at the credentials themselves (expired session,
// AssumeRole denied, no network) rather than at missing EC2 permissions.
func (v *AccountValidator) ValidateAccess(ctx context.Context) (*Identity, error) {
	identity, err := v.client.CallerIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to validate AWS credentials: %w", err)
	}

	if v.expectedAccountID != "" && identity.AccountID != v.expectedAccountID {
		return identity, fmt.Errorf("%w: expected %s, got %s",
			ErrAccountMismatch, v.expectedAccountID, identity.AccountID)
	}

	return identity, nil
}
