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

package surety

import (
	"github.com/flightsurety/surety/database"
	"github.com/flightsurety/surety/types"
)

// IsOperational returns the ledger's operational flag
func (l *Ledger) IsOperational() (bool, error) {
	const op = "isOperational"
	var operational bool
	err := l.runOp(op, false, func(txn *database.Txn) error {
		var err error
		operational, err = l.accessControl.IsOperational(txn)
		return err
	})
	return operational, err
}

// SetOperationalStatus pauses or resumes the ledger. Authorized callers
// only, and requesting the current value is rejected
func (l *Ledger) SetOperationalStatus(
	caller types.Address,
	value bool,
) error {
	const op = "setOperationalStatus"
	return l.runOp(op, true, func(txn *database.Txn) error {
		return l.accessControl.SetOperational(txn, caller, value)
	})
}

// AuthorizeCaller grants an address permission to invoke privileged
// operations. Owner only
func (l *Ledger) AuthorizeCaller(caller, addr types.Address) error {
	const op = "authorizeCaller"
	return l.runOp(op, true, func(txn *database.Txn) error {
		return l.accessControl.Authorize(txn, caller, addr)
	})
}

// DeauthorizeCaller revokes a previously granted authorization. Owner only
func (l *Ledger) DeauthorizeCaller(caller, addr types.Address) error {
	const op = "deauthorizeCaller"
	return l.runOp(op, true, func(txn *database.Txn) error {
		return l.accessControl.Deauthorize(txn, caller, addr)
	})
}
