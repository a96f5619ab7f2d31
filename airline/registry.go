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

package airline

import (
	"io"
	"log/slog"

	"github.com/flightsurety/surety/database"
	"github.com/flightsurety/surety/database/models"
	"github.com/flightsurety/surety/types"
)

// BootstrapThreshold is the validated-airline count below which candidates
// are admitted on the first vote. At or above it, admission requires a
// multi-party majority
const BootstrapThreshold = 4

// Registry admits carriers and tracks their funding balances. Admission
// uses a first-mover bootstrap regime followed by multi-party voting once
// enough airlines are validated
type Registry struct {
	db     *database.Database
	logger *slog.Logger
}

func New(db *database.Database, logger *slog.Logger) *Registry {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Registry{
		db:     db,
		logger: logger,
	}
}

// Bootstrap seeds the first airline at ledger initialization. The airline
// is registered but must still fund itself to become validated
func (r *Registry) Bootstrap(
	txn *database.Txn,
	addr types.Address,
	name string,
) error {
	existing, err := r.db.GetAirline(txn, addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	tmpAirline := &models.Airline{
		Address:    addr.Bytes(),
		Name:       name,
		Registered: true,
	}
	if err := r.db.SetAirline(txn, tmpAirline); err != nil {
		return err
	}
	r.logger.Info(
		"first airline seeded",
		"airline", addr.String(),
		"name", name,
		"component", "airline",
	)
	return nil
}

// Get fetches an airline record, nil when absent
func (r *Registry) Get(
	txn *database.Txn,
	addr types.Address,
) (*models.Airline, error) {
	return r.db.GetAirline(txn, addr)
}

// Balance returns the airline's funding balance, zero for unknown addresses
func (r *Registry) Balance(
	txn *database.Txn,
	addr types.Address,
) (types.Amount, error) {
	tmpAirline, err := r.db.GetAirline(txn, addr)
	if err != nil {
		return 0, err
	}
	if tmpAirline == nil {
		return 0, nil
	}
	return types.Amount(tmpAirline.Balance), nil
}

// RequireValidated fails with an AuthorizationError unless the caller is a
// validated airline
func (r *Registry) RequireValidated(
	txn *database.Txn,
	op string,
	caller types.Address,
) error {
	tmpAirline, err := r.db.GetAirline(txn, caller)
	if err != nil {
		return err
	}
	if tmpAirline == nil || !tmpAirline.Validated {
		return types.NewAuthorizationError(
			op,
			"caller is not a validated airline",
		)
	}
	return nil
}

// Register records an admission vote for a candidate airline from a
// validated voter. Below BootstrapThreshold validated airlines, the first
// vote registers the candidate immediately. Otherwise the candidate is
// registered once ceil(V/2) distinct validated airlines have voted, where
// V is the validated count at the time of the vote. Returns the recorded
// vote count and whether the candidate became registered on this vote.
// A repeat vote from the same voter has no effect and returns the
// unchanged count
func (r *Registry) Register(
	txn *database.Txn,
	voter, candidate types.Address,
	name string,
) (int, bool, error) {
	const op = "registerAirline"
	if err := r.RequireValidated(txn, op, voter); err != nil {
		return 0, false, err
	}
	if candidate.IsZero() {
		return 0, false, types.NewValidationError(
			op,
			"invalid address to register",
		)
	}
	existing, err := r.db.GetAirline(txn, candidate)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		if existing.Validated {
			return 0, false, types.NewValidationError(
				op,
				"airline is already validated",
			)
		}
		return 0, false, types.NewValidationError(
			op,
			"airline is already registered",
		)
	}
	validatedCount, err := r.db.CountValidatedAirlines(txn)
	if err != nil {
		return 0, false, err
	}
	if validatedCount < BootstrapThreshold {
		// Bootstrap regime: a single vote admits the candidate
		if err := r.admit(txn, candidate, name); err != nil {
			return 0, false, err
		}
		return 1, true, nil
	}
	// Multi-party regime
	added, err := r.db.AddAirlineVote(txn, candidate, voter)
	if err != nil {
		return 0, false, err
	}
	votes, err := r.db.CountAirlineVotes(txn, candidate)
	if err != nil {
		return 0, false, err
	}
	if !added {
		// Repeat votes from the same caller are deduplicated
		return votes, false, nil
	}
	threshold := (validatedCount + 1) / 2
	if votes < threshold {
		return votes, false, nil
	}
	if err := r.admit(txn, candidate, name); err != nil {
		return 0, false, err
	}
	// Pending votes are cleared once the candidate becomes registered
	if err := r.db.ClearAirlineVotes(txn, candidate); err != nil {
		return 0, false, err
	}
	return votes, true, nil
}

func (r *Registry) admit(
	txn *database.Txn,
	candidate types.Address,
	name string,
) error {
	tmpAirline := &models.Airline{
		Address:    candidate.Bytes(),
		Name:       name,
		Registered: true,
	}
	if err := r.db.SetAirline(txn, tmpAirline); err != nil {
		return err
	}
	r.logger.Info(
		"airline registered",
		"airline", candidate.String(),
		"name", name,
		"component", "airline",
	)
	return nil
}

// Fund adds a funding deposit to a registered airline's balance. The sent
// amount must meet the minimum funding fee; the airline becomes validated
// on its first qualifying deposit. Funding is cumulative and repeatable
// without upper bound
func (r *Registry) Fund(
	txn *database.Txn,
	caller types.Address,
	amount types.Amount,
) error {
	const op = "fundAirline"
	tmpAirline, err := r.db.GetAirline(txn, caller)
	if err != nil {
		return err
	}
	if tmpAirline == nil || !tmpAirline.Registered {
		return types.NewAuthorizationError(
			op,
			"caller is not a registered airline",
		)
	}
	if amount < types.MinAirlineFunding {
		return types.NewValidationError(
			op,
			"minimum fee required for funding",
		)
	}
	tmpAirline.Balance += uint64(amount)
	if !tmpAirline.Validated {
		tmpAirline.Validated = true
	}
	if err := r.db.SetAirline(txn, tmpAirline); err != nil {
		return err
	}
	// The deposit is held by the ledger
	if err := r.db.AddTreasury(txn, amount); err != nil {
		return err
	}
	r.logger.Info(
		"airline funded",
		"airline", caller.String(),
		"amount", uint64(amount),
		"component", "airline",
	)
	return nil
}

// AddBalance credits an airline's balance. Used when premiums accrue to
// the carrier
func (r *Registry) AddBalance(
	txn *database.Txn,
	addr types.Address,
	delta types.Amount,
) error {
	tmpAirline, err := r.db.GetAirline(txn, addr)
	if err != nil {
		return err
	}
	if tmpAirline == nil {
		return types.NewValidationError("addBalance", "unknown airline")
	}
	tmpAirline.Balance += uint64(delta)
	return r.db.SetAirline(txn, tmpAirline)
}

// SubBalance debits an airline's balance to cover a payout obligation
func (r *Registry) SubBalance(
	txn *database.Txn,
	addr types.Address,
	delta types.Amount,
) error {
	tmpAirline, err := r.db.GetAirline(txn, addr)
	if err != nil {
		return err
	}
	if tmpAirline == nil {
		return types.NewValidationError("subBalance", "unknown airline")
	}
	if tmpAirline.Balance < uint64(delta) {
		return types.NewInsufficientFundsError(
			"subBalance",
			"airline balance exceeded",
			delta,
			types.Amount(tmpAirline.Balance),
		)
	}
	tmpAirline.Balance -= uint64(delta)
	return r.db.SetAirline(txn, tmpAirline)
}

// CountValidated returns the number of currently validated airlines
func (r *Registry) CountValidated(txn *database.Txn) (int, error) {
	return r.db.CountValidatedAirlines(txn)
}
