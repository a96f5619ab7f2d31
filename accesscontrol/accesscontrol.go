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

package accesscontrol

import (
	"errors"
	"io"
	"log/slog"

	"github.com/flightsurety/surety/database"
	"github.com/flightsurety/surety/types"
)

// AccessControl tracks the ledger owner and the set of addresses authorized
// to invoke privileged operations, and holds the process-wide operational
// flag. Every other component is gated through its guard helpers
type AccessControl struct {
	db     *database.Database
	logger *slog.Logger
}

func New(db *database.Database, logger *slog.Logger) *AccessControl {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &AccessControl{
		db:     db,
		logger: logger,
	}
}

// Bootstrap creates the ledger state row on first startup, recording the
// owner and starting the ledger operational
func (a *AccessControl) Bootstrap(
	txn *database.Txn,
	owner types.Address,
) (bool, error) {
	if owner.IsZero() {
		return false, errors.New("owner address is required")
	}
	created, err := a.db.InitLedgerState(txn, owner)
	if err != nil {
		return false, err
	}
	if created {
		a.logger.Info(
			"ledger state initialized",
			"owner", owner.String(),
			"component", "accesscontrol",
		)
	}
	return created, nil
}

// Owner returns the ledger owner address
func (a *AccessControl) Owner(txn *database.Txn) (types.Address, error) {
	state, err := a.db.LedgerState(txn)
	if err != nil {
		return types.ZeroAddress, err
	}
	if state == nil {
		return types.ZeroAddress, errors.New("ledger state not initialized")
	}
	return types.AddressFromBytes(state.Owner)
}

// IsOwner returns true if the caller is the ledger owner
func (a *AccessControl) IsOwner(
	txn *database.Txn,
	caller types.Address,
) (bool, error) {
	owner, err := a.Owner(txn)
	if err != nil {
		return false, err
	}
	return caller == owner, nil
}

// IsAuthorized returns true for the owner and for any address in the
// authorized caller set
func (a *AccessControl) IsAuthorized(
	txn *database.Txn,
	caller types.Address,
) (bool, error) {
	isOwner, err := a.IsOwner(txn, caller)
	if err != nil {
		return false, err
	}
	if isOwner {
		return true, nil
	}
	return a.db.IsAuthorizedCaller(txn, caller)
}

// Authorize grants an address permission to invoke privileged operations.
// Owner only
func (a *AccessControl) Authorize(
	txn *database.Txn,
	caller, addr types.Address,
) error {
	if err := a.RequireOwner(txn, "authorizeCaller", caller); err != nil {
		return err
	}
	if addr.IsZero() {
		return types.NewValidationError(
			"authorizeCaller",
			"invalid address to authorize",
		)
	}
	return a.db.AddAuthorizedCaller(txn, addr)
}

// Deauthorize revokes a previously granted authorization. Owner only
func (a *AccessControl) Deauthorize(
	txn *database.Txn,
	caller, addr types.Address,
) error {
	if err := a.RequireOwner(txn, "deauthorizeCaller", caller); err != nil {
		return err
	}
	return a.db.RemoveAuthorizedCaller(txn, addr)
}

// IsOperational returns the operational flag
func (a *AccessControl) IsOperational(txn *database.Txn) (bool, error) {
	state, err := a.db.LedgerState(txn)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, errors.New("ledger state not initialized")
	}
	return state.Operational, nil
}

// SetOperational stores the operational flag. Authorized callers only.
// Requesting the current value is rejected rather than silently accepted
func (a *AccessControl) SetOperational(
	txn *database.Txn,
	caller types.Address,
	value bool,
) error {
	const op = "setOperationalStatus"
	if err := a.RequireAuthorized(txn, op, caller); err != nil {
		return err
	}
	current, err := a.IsOperational(txn)
	if err != nil {
		return err
	}
	if current == value {
		return types.NewOperationalStateError(
			op,
			"ledger is already in this state",
		)
	}
	if err := a.db.SetOperational(txn, value); err != nil {
		return err
	}
	a.logger.Info(
		"operational status changed",
		"operational", value,
		"component", "accesscontrol",
	)
	return nil
}

// RequireOwner fails with an AuthorizationError unless the caller is the
// ledger owner
func (a *AccessControl) RequireOwner(
	txn *database.Txn,
	op string,
	caller types.Address,
) error {
	isOwner, err := a.IsOwner(txn, caller)
	if err != nil {
		return err
	}
	if !isOwner {
		return types.NewAuthorizationError(op, "caller is not the ledger owner")
	}
	return nil
}

// RequireAuthorized fails with an AuthorizationError unless the caller is
// the owner or in the authorized caller set
func (a *AccessControl) RequireAuthorized(
	txn *database.Txn,
	op string,
	caller types.Address,
) error {
	authorized, err := a.IsAuthorized(txn, caller)
	if err != nil {
		return err
	}
	if !authorized {
		return types.NewAuthorizationError(op, "caller is not authorized")
	}
	return nil
}

// RequireOperational fails with an OperationalStateError unless the ledger
// is operational. Every mutating operation's precondition chain starts here
func (a *AccessControl) RequireOperational(
	txn *database.Txn,
	op string,
) error {
	operational, err := a.IsOperational(txn)
	if err != nil {
		return err
	}
	if !operational {
		return types.NewOperationalStateError(
			op,
			"ledger is currently not operational",
		)
	}
	return nil
}
