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

// FlightInfo is the externally visible view of a registered flight
type FlightInfo struct {
	Key       types.FlightKey
	Airline   types.Address
	Number    string
	Timestamp int64
	Status    types.StatusCode
}

// RegisterFlight records a new insurable flight for the calling airline.
// The caller must be a validated airline and must not already have a flight
// under the same number
func (l *Ledger) RegisterFlight(
	caller types.Address,
	number string,
	timestamp int64,
) (types.FlightKey, error) {
	const op = "registerFlight"
	var key types.FlightKey
	err := l.runOp(op, true, func(txn *database.Txn) error {
		if err := l.accessControl.RequireOperational(txn, op); err != nil {
			return err
		}
		if err := l.airlines.RequireValidated(txn, op, caller); err != nil {
			return err
		}
		var err error
		key, err = l.flights.Register(txn, caller, number, timestamp)
		return err
	})
	if err != nil {
		return types.FlightKey{}, err
	}
	return key, nil
}

// FlightDetails returns the earliest-registered flight with the given
// number. An unknown number yields the zero-valued record rather than an
// error
func (l *Ledger) FlightDetails(number string) (*FlightInfo, error) {
	const op = "flightDetails"
	info := &FlightInfo{}
	err := l.runOp(op, false, func(txn *database.Txn) error {
		tmpFlight, err := l.flights.GetByNumber(txn, number)
		if err != nil {
			return err
		}
		if tmpFlight == nil {
			return nil
		}
		key, err := types.FlightKeyFromBytes(tmpFlight.Key)
		if err != nil {
			return err
		}
		airlineAddr, err := types.AddressFromBytes(tmpFlight.Airline)
		if err != nil {
			return err
		}
		info = &FlightInfo{
			Key:       key,
			Airline:   airlineAddr,
			Number:    tmpFlight.Number,
			Timestamp: tmpFlight.Timestamp,
			Status:    types.StatusCode(tmpFlight.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// AllFlights returns every registered flight key in registration order
func (l *Ledger) AllFlights() ([]types.FlightKey, error) {
	const op = "allFlights"
	var keys []types.FlightKey
	err := l.runOp(op, false, func(txn *database.Txn) error {
		var err error
		keys, err = l.flights.AllKeys(txn)
		return err
	})
	return keys, err
}

// FlightStatusInfo returns the current status of a flight identified by the
// (airline, number, timestamp) tuple
func (l *Ledger) FlightStatusInfo(
	airline types.Address,
	number string,
	timestamp int64,
) (types.StatusCode, error) {
	const op = "flightStatusInfo"
	var status types.StatusCode
	err := l.runOp(op, false, func(txn *database.Txn) error {
		key := types.ComputeFlightKey(airline, number, timestamp)
		tmpFlight, err := l.flights.Get(txn, key)
		if err != nil {
			return err
		}
		if tmpFlight == nil {
			return types.NewValidationError(op, "flight does not exist")
		}
		status = types.StatusCode(tmpFlight.Status)
		return nil
	})
	return status, err
}
