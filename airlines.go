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

// RegisterAirline records an admission vote for a candidate airline from a
// validated voter. Returns the recorded vote count and whether the
// candidate became registered on this vote. A repeat vote from the same
// voter is a silent no-op
func (l *Ledger) RegisterAirline(
	caller, candidate types.Address,
	name string,
) (int, bool, error) {
	const op = "registerAirline"
	var votes int
	var registered bool
	err := l.runOp(op, true, func(txn *database.Txn) error {
		if err := l.accessControl.RequireOperational(txn, op); err != nil {
			return err
		}
		var err error
		votes, registered, err = l.airlines.Register(
			txn,
			caller,
			candidate,
			name,
		)
		if err != nil {
			return err
		}
		if registered {
			if err := l.recordEvent(
				txn,
				event.AirlineRegisteredEventType,
				event.AirlineRegisteredEvent{
					Airline: candidate,
					Votes:   votes,
				},
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return votes, registered, nil
}

// FundAirline adds a funding deposit to the calling airline's balance. The
// amount must meet the minimum funding fee and the airline becomes
// validated on its first qualifying deposit
func (l *Ledger) FundAirline(
	caller types.Address,
	amount types.Amount,
) error {
	const op = "fundAirline"
	return l.runOp(op, true, func(txn *database.Txn) error {
		if err := l.accessControl.RequireOperational(txn, op); err != nil {
			return err
		}
		if err := l.airlines.Fund(txn, caller, amount); err != nil {
			return err
		}
		if l.metrics != nil {
			count, err := l.airlines.CountValidated(txn)
			if err != nil {
				return err
			}
			l.metrics.airlinesValidated.Set(float64(count))
		}
		return l.recordEvent(
			txn,
			event.AirlineFundedEventType,
			event.AirlineFundedEvent{
				Airline: caller,
				Amount:  amount,
			},
		)
	})
}

// AirlineBalance returns an airline's funding balance, zero for unknown
// addresses
func (l *Ledger) AirlineBalance(addr types.Address) (types.Amount, error) {
	const op = "airlineBalance"
	var balance types.Amount
	err := l.runOp(op, false, func(txn *database.Txn) error {
		var err error
		balance, err = l.airlines.Balance(txn, addr)
		return err
	})
	return balance, err
}

// IsAirlineValidated returns whether an address is a validated airline
func (l *Ledger) IsAirlineValidated(addr types.Address) (bool, error) {
	const op = "isAirlineValidated"
	var validated bool
	err := l.runOp(op, false, func(txn *database.Txn) error {
		tmpAirline, err := l.airlines.Get(txn, addr)
		if err != nil {
			return err
		}
		validated = tmpAirline != nil && tmpAirline.Validated
		return nil
	})
	return validated, err
}
