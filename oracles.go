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
	"github.com/flightsurety/surety/oracle"
	"github.com/flightsurety/surety/types"
)

// RegisterOracle records a new oracle and returns its three assigned index
// values. The registration fee must meet the minimum and is kept by the
// ledger
func (l *Ledger) RegisterOracle(
	caller types.Address,
	fee types.Amount,
) ([oracle.IndexCount]uint8, error) {
	const op = "registerOracle"
	var indexes [oracle.IndexCount]uint8
	err := l.runOp(op, true, func(txn *database.Txn) error {
		if err := l.accessControl.RequireOperational(txn, op); err != nil {
			return err
		}
		var err error
		indexes, err = l.oracles.Register(txn, caller, fee)
		return err
	})
	return indexes, err
}

// OracleIndexes returns the calling oracle's assigned index values
func (l *Ledger) OracleIndexes(
	caller types.Address,
) ([oracle.IndexCount]uint8, error) {
	const op = "oracleIndexes"
	var indexes [oracle.IndexCount]uint8
	err := l.runOp(op, false, func(txn *database.Txn) error {
		var err error
		indexes, err = l.oracles.Indexes(txn, caller)
		return err
	})
	return indexes, err
}

// FetchFlightStatus opens a status-fetch request for a flight under a
// freshly drawn random index. Oracles holding that index observe the
// emitted request event and respond via SubmitOracleResponse
func (l *Ledger) FetchFlightStatus(
	airline types.Address,
	number string,
	timestamp int64,
) (uint8, error) {
	const op = "fetchFlightStatus"
	var index uint8
	err := l.runOp(op, true, func(txn *database.Txn) error {
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
		index, err = l.oracles.OpenRequest(txn, tmpFlight)
		if err != nil {
			return err
		}
		if err := l.updateOpenRequestsMetric(txn); err != nil {
			return err
		}
		return l.recordEvent(
			txn,
			event.OracleRequestEventType,
			event.OracleRequestEvent{
				Index:        index,
				Airline:      airline,
				FlightNumber: number,
				Timestamp:    timestamp,
			},
		)
	})
	return index, err
}

// SubmitOracleResponse records an oracle's status report against the
// matching open request. When the report completes a quorum of matching
// reports, the flight resolves to the reported status, its open requests
// close, and payouts are credited for a late-airline resolution
func (l *Ledger) SubmitOracleResponse(
	caller types.Address,
	index uint8,
	airline types.Address,
	number string,
	timestamp int64,
	status types.StatusCode,
) error {
	const op = "submitOracleResponse"
	return l.runOp(op, true, func(txn *database.Txn) error {
		if err := l.accessControl.RequireOperational(txn, op); err != nil {
			return err
		}
		if !status.IsTerminal() {
			return types.NewValidationError(
				op,
				"status code is not a valid report",
			)
		}
		_, quorum, err := l.oracles.SubmitResponse(
			txn,
			caller,
			index,
			airline,
			number,
			timestamp,
			status,
		)
		if err != nil {
			return err
		}
		if err := l.recordEvent(
			txn,
			event.OracleReportEventType,
			event.OracleReportEvent{
				Airline:      airline,
				FlightNumber: number,
				Timestamp:    timestamp,
				Status:       status,
			},
		); err != nil {
			return err
		}
		if !quorum {
			return nil
		}
		return l.resolveFlight(txn, airline, number, timestamp, status)
	})
}

// resolveFlight writes the flight's terminal status, closes its open
// requests, and settles payouts when the resolution is a late-airline
// status
func (l *Ledger) resolveFlight(
	txn *database.Txn,
	airline types.Address,
	number string,
	timestamp int64,
	status types.StatusCode,
) error {
	key := types.ComputeFlightKey(airline, number, timestamp)
	if err := l.flights.Resolve(txn, key, status); err != nil {
		return err
	}
	if err := l.oracles.CloseRequests(txn, key); err != nil {
		return err
	}
	if err := l.updateOpenRequestsMetric(txn); err != nil {
		return err
	}
	if status == types.StatusLateAirline {
		total, credited, err := l.insurances.CreditInsurees(txn, key)
		if err != nil {
			return err
		}
		if credited > 0 {
			// The airline covers the payouts from its funding balance
			if err := l.airlines.SubBalance(txn, airline, total); err != nil {
				return err
			}
			if l.metrics != nil {
				l.metrics.payoutsCredited.Add(float64(credited))
			}
		}
	}
	return l.recordEvent(
		txn,
		event.FlightStatusEventType,
		event.FlightStatusEvent{
			Airline:      airline,
			FlightNumber: number,
			Timestamp:    timestamp,
			Status:       status,
		},
	)
}

func (l *Ledger) updateOpenRequestsMetric(txn *database.Txn) error {
	if l.metrics == nil {
		return nil
	}
	count, err := l.db.CountOpenOracleRequests(txn)
	if err != nil {
		return err
	}
	l.metrics.openOracleRequests.Set(float64(count))
	return nil
}
