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

package flight

import (
	"io"
	"log/slog"

	"github.com/flightsurety/surety/database"
	"github.com/flightsurety/surety/database/models"
	"github.com/flightsurety/surety/types"
)

// Registry tracks insurable flights and their resolution state. A flight's
// status starts unknown and is written exactly once when the oracle quorum
// resolves it
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

// Register records a new insurable flight for a validated airline. A
// flight number may be registered once per airline, so re-registering the
// same number under any timestamp is rejected
func (r *Registry) Register(
	txn *database.Txn,
	airline types.Address,
	number string,
	timestamp int64,
) (types.FlightKey, error) {
	const op = "registerFlight"
	if number == "" {
		return types.FlightKey{}, types.NewValidationError(
			op,
			"flight number is required",
		)
	}
	existing, err := r.db.GetFlightByAirlineNumber(txn, airline, number)
	if err != nil {
		return types.FlightKey{}, err
	}
	if existing != nil {
		return types.FlightKey{}, types.NewValidationError(
			op,
			"flight exists already",
		)
	}
	key := types.ComputeFlightKey(airline, number, timestamp)
	tmpFlight := &models.Flight{
		Key:       key.Bytes(),
		Airline:   airline.Bytes(),
		Number:    number,
		Timestamp: timestamp,
		Status:    uint8(types.StatusUnknown),
	}
	if err := r.db.SetFlight(txn, tmpFlight); err != nil {
		return types.FlightKey{}, err
	}
	r.logger.Info(
		"flight registered",
		"airline", airline.String(),
		"number", number,
		"timestamp", timestamp,
		"key", key.String(),
		"component", "flight",
	)
	return key, nil
}

// Get fetches a flight by key, nil when absent
func (r *Registry) Get(
	txn *database.Txn,
	key types.FlightKey,
) (*models.Flight, error) {
	return r.db.GetFlight(txn, key)
}

// GetByNumber fetches the earliest-registered flight with the given number,
// nil when absent
func (r *Registry) GetByNumber(
	txn *database.Txn,
	number string,
) (*models.Flight, error) {
	return r.db.GetFlightByNumber(txn, number)
}

// AllKeys returns every registered flight key in registration order
func (r *Registry) AllKeys(txn *database.Txn) ([]types.FlightKey, error) {
	return r.db.GetAllFlightKeys(txn)
}

// Resolve writes the flight's terminal status. The write is once-only: a
// flight already carrying a terminal status cannot be resolved again
func (r *Registry) Resolve(
	txn *database.Txn,
	key types.FlightKey,
	status types.StatusCode,
) error {
	const op = "resolveFlight"
	tmpFlight, err := r.db.GetFlight(txn, key)
	if err != nil {
		return err
	}
	if tmpFlight == nil {
		return types.NewValidationError(op, "flight does not exist")
	}
	if types.StatusCode(tmpFlight.Status).IsTerminal() {
		return types.NewValidationError(op, "flight is already resolved")
	}
	tmpFlight.Status = uint8(status)
	if err := r.db.SetFlight(txn, tmpFlight); err != nil {
		return err
	}
	r.logger.Info(
		"flight resolved",
		"key", key.String(),
		"status", uint8(status),
		"component", "flight",
	)
	return nil
}
