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
	"github.com/flightsurety/surety/event"
	"github.com/flightsurety/surety/types"
)

// BuyInsurance sells a policy on a flight to the caller. The premium must
// be positive and at most the premium cap, and the flight must still be
// unresolved. The premium is held by the ledger and accrues to the
// airline's balance
func (l *Ledger) BuyInsurance(
	caller, airline types.Address,
	number string,
	timestamp int64,
	amount types.Amount,
) error {
	const op = "buyInsurance"
	return l.runOp(op, true, func(txn *database.Txn) error {
		if err := l.accessControl.RequireOperational(txn, op); err != nil {
			return err
		}
		key := types.ComputeFlightKey(airline, number, timestamp)
		tmpFlight, err := l.flights.Get(txn, key)
		if err != nil {
			return err
		}
		if tmpFlight == nil {
			return types.NewValidationError(op, "flight does not exist")
		}
		if err := l.insurances.Buy(txn, caller, tmpFlight, amount); err != nil {
			return err
		}
		// The premium accrues to the carrier
		if err := l.airlines.AddBalance(txn, airline, amount); err != nil {
			return err
		}
		if l.metrics != nil {
			l.metrics.policiesSold.Inc()
		}
		return l.recordEvent(
			txn,
			event.InsurancePurchasedEventType,
			event.InsurancePurchasedEvent{
				Holder:       caller,
				FlightNumber: number,
				Amount:       amount,
			},
		)
	})
}

// InsureeBalance returns the caller's recorded balance, zero for unknown
// addresses
func (l *Ledger) InsureeBalance(caller types.Address) (types.Amount, error) {
	const op = "insureeBalance"
	var balance types.Amount
	err := l.runOp(op, false, func(txn *database.Txn) error {
		var err error
		balance, err = l.insurances.Balance(txn, caller)
		return err
	})
	return balance, err
}

// EstimativeCreditingCost returns the total payout that crediting a
// flight's uncredited policies would cost. Zero once every policy on the
// flight is credited
func (l *Ledger) EstimativeCreditingCost(
	airline types.Address,
	number string,
	timestamp int64,
) (types.Amount, error) {
	const op = "estimativeCreditingCost"
	var cost types.Amount
	err := l.runOp(op, false, func(txn *database.Txn) error {
		key := types.ComputeFlightKey(airline, number, timestamp)
		var err error
		cost, err = l.insurances.EstimativeCreditingCost(txn, key)
		return err
	})
	return cost, err
}

// Withdraw moves funds from the caller's recorded balance out of the
// ledger. The amount must not exceed the caller's balance and the ledger
// must hold enough on-hand funds to cover it
func (l *Ledger) Withdraw(caller types.Address, amount types.Amount) error {
	const op = "withdraw"
	return l.runOp(op, true, func(txn *database.Txn) error {
		if err := l.accessControl.RequireOperational(txn, op); err != nil {
			return err
		}
		return l.insurances.Withdraw(txn, caller, amount)
	})
}
