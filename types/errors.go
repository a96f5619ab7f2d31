// Copyright 2025 Blink Labs Software
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

package types

import "fmt"

// AuthorizationError indicates the caller lacks the role or authorization
// required for an operation
type AuthorizationError struct {
	Op     string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func NewAuthorizationError(op, reason string) *AuthorizationError {
	return &AuthorizationError{Op: op, Reason: reason}
}

// OperationalStateError indicates the ledger is paused, or a requested
// operational transition matches the current state
type OperationalStateError struct {
	Op     string
	Reason string
}

func (e *OperationalStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func NewOperationalStateError(op, reason string) *OperationalStateError {
	return &OperationalStateError{Op: op, Reason: reason}
}

// ValidationError indicates malformed or policy-violating input
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func NewValidationError(op, reason string) *ValidationError {
	return &ValidationError{Op: op, Reason: reason}
}

// InsufficientFundsError indicates a recorded-balance or on-hand-funds
// shortfall. Requested and Available describe the shortfall
type InsufficientFundsError struct {
	Op        string
	Reason    string
	Requested Amount
	Available Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"%s: %s: requested %d, available %d",
		e.Op,
		e.Reason,
		e.Requested,
		e.Available,
	)
}

func NewInsufficientFundsError(
	op, reason string,
	requested, available Amount,
) *InsufficientFundsError {
	return &InsufficientFundsError{
		Op:        op,
		Reason:    reason,
		Requested: requested,
		Available: available,
	}
}
