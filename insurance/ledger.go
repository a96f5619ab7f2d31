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

package insurance

import (
	"io"
	"log/slog"

	"github.com/flightsurety/surety/database"
	"github.com/flightsurety/surety/database/models"
	"github.com/flightsurety/surety/types"
)

// PayoutDeltaTenths is the surcharge paid on top of the premium when a
// policy is credited, in tenths of the premium. A value of 5 yields a
// payout of one and a half times the premium
const PayoutDeltaTenths = 5

// PayoutFor returns the credit owed on a policy with the given premium
func PayoutFor(premium types.Amount) types.Amount {
	return premium + premium*PayoutDeltaTenths/10
}

// Ledger sells policies and settles payouts. Each (holder, flight) pair
// carries at most one policy, and a policy is credited at most once
type Ledger struct {
	db     *database.Database
	logger *slog.Logger
}

func New(db *database.Database, logger *slog.Logger) *Ledger {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Ledger{
		db:     db,
		logger: logger,
	}
}

// Buy sells a policy on a flight to a holder. The premium must be positive
// and at most MaxInsurancePremium, the flight must still be unresolved, and
// the holder may hold only one policy per flight. The premium is held by
// the ledger
func (l *Ledger) Buy(
	txn *database.Txn,
	holder types.Address,
	flight *models.Flight,
	amount types.Amount,
) error {
	const op = "buyInsurance"
	if amount == 0 {
		return types.NewValidationError(op, "premium is required")
	}
	if amount > types.MaxInsurancePremium {
		return types.NewValidationError(op, "premium exceeds maximum")
	}
	if types.StatusCode(flight.Status).IsTerminal() {
		return types.NewValidationError(op, "flight is already resolved")
	}
	flightKey, err := types.FlightKeyFromBytes(flight.Key)
	if err != nil {
		return err
	}
	policyKey := types.ComputePolicyKey(holder, flightKey)
	existing, err := l.db.GetPolicy(txn, policyKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return types.NewValidationError(op, "policy exists already")
	}
	tmpPolicy := &models.Policy{
		Key:       policyKey,
		FlightKey: flight.Key,
		Holder:    holder.Bytes(),
		Amount:    uint64(amount),
	}
	if err := l.db.SetPolicy(txn, tmpPolicy); err != nil {
		return err
	}
	if err := l.db.AddTreasury(txn, amount); err != nil {
		return err
	}
	l.logger.Info(
		"policy sold",
		"holder", holder.String(),
		"number", flight.Number,
		"amount", uint64(amount),
		"component", "insurance",
	)
	return nil
}

// Get fetches a policy for a (holder, flight) pair, nil when absent
func (l *Ledger) Get(
	txn *database.Txn,
	holder types.Address,
	flightKey types.FlightKey,
) (*models.Policy, error) {
	return l.db.GetPolicy(txn, types.ComputePolicyKey(holder, flightKey))
}

// CreditInsurees settles every uncredited policy on a flight, moving the
// payout onto each holder's recorded balance. Already-credited policies
// are skipped, making repeated crediting a no-op. Returns the total amount
// credited and the number of policies settled
func (l *Ledger) CreditInsurees(
	txn *database.Txn,
	flightKey types.FlightKey,
) (types.Amount, int, error) {
	policies, err := l.db.GetPoliciesForFlight(txn, flightKey)
	if err != nil {
		return 0, 0, err
	}
	var total types.Amount
	var credited int
	for i := range policies {
		tmpPolicy := &policies[i]
		if tmpPolicy.Credited {
			continue
		}
		payout := PayoutFor(types.Amount(tmpPolicy.Amount))
		holder, err := types.AddressFromBytes(tmpPolicy.Holder)
		if err != nil {
			return 0, 0, err
		}
		if err := l.db.AddInsureeBalance(txn, holder, payout); err != nil {
			return 0, 0, err
		}
		tmpPolicy.Credited = true
		if err := l.db.SetPolicy(txn, tmpPolicy); err != nil {
			return 0, 0, err
		}
		total += payout
		credited++
	}
	if credited > 0 {
		l.logger.Info(
			"insurees credited",
			"flight", flightKey.String(),
			"policies", credited,
			"total", uint64(total),
			"component", "insurance",
		)
	}
	return total, credited, nil
}

// EstimativeCreditingCost returns the total payout that crediting the
// flight's uncredited policies would cost. Zero once all policies on the
// flight are credited
func (l *Ledger) EstimativeCreditingCost(
	txn *database.Txn,
	flightKey types.FlightKey,
) (types.Amount, error) {
	policies, err := l.db.GetPoliciesForFlight(txn, flightKey)
	if err != nil {
		return 0, err
	}
	var total types.Amount
	for i := range policies {
		if policies[i].Credited {
			continue
		}
		total += PayoutFor(types.Amount(policies[i].Amount))
	}
	return total, nil
}

// Balance returns a holder's recorded balance, zero for unknown addresses
func (l *Ledger) Balance(
	txn *database.Txn,
	addr types.Address,
) (types.Amount, error) {
	return l.db.GetInsureeBalance(txn, addr)
}

// Withdraw moves funds from a holder's recorded balance out of the ledger.
// The amount must not exceed the holder's balance, and the ledger must
// hold enough on-hand funds to cover it
func (l *Ledger) Withdraw(
	txn *database.Txn,
	caller types.Address,
	amount types.Amount,
) error {
	const op = "withdraw"
	balance, err := l.db.GetInsureeBalance(txn, caller)
	if err != nil {
		return err
	}
	if amount > balance {
		return types.NewInsufficientFundsError(
			op,
			"amount exceeds balance",
			amount,
			balance,
		)
	}
	state, err := l.db.LedgerState(txn)
	if err != nil {
		return err
	}
	if state == nil || types.Amount(state.Treasury) < amount {
		var available types.Amount
		if state != nil {
			available = types.Amount(state.Treasury)
		}
		return types.NewInsufficientFundsError(
			op,
			"not enough funds available",
			amount,
			available,
		)
	}
	if err := l.db.SubInsureeBalance(txn, caller, amount); err != nil {
		return err
	}
	if err := l.db.SubTreasury(txn, amount); err != nil {
		return err
	}
	l.logger.Info(
		"withdrawal settled",
		"holder", caller.String(),
		"amount", uint64(amount),
		"component", "insurance",
	)
	return nil
}
