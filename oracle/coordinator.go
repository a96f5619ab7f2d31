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

package oracle

import (
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/flightsurety/surety/database"
	"github.com/flightsurety/surety/database/models"
	"github.com/flightsurety/surety/types"
)

const (
	// IndexCount is the number of index values an oracle is assigned at
	// registration
	IndexCount = 3
	// IndexRange is the exclusive upper bound of index values
	IndexRange = 10
	// MinResponses is the number of matching reports required to resolve
	// a flight's status
	MinResponses = 3
)

// Coordinator manages oracle registration, status-fetch requests, and
// report collection. Requests carry a random index so that only the subset
// of oracles holding that index may respond, and a flight resolves once
// MinResponses oracles agree on a status
type Coordinator struct {
	db     *database.Database
	logger *slog.Logger
	rng    *rand.Rand
}

func New(db *database.Database, logger *slog.Logger, seed uint64) *Coordinator {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Coordinator{
		db:     db,
		logger: logger,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Register records a new oracle and assigns it three distinct random index
// values in [0, IndexRange). The registration fee must meet the minimum and
// is kept by the ledger
func (c *Coordinator) Register(
	txn *database.Txn,
	caller types.Address,
	fee types.Amount,
) ([IndexCount]uint8, error) {
	const op = "registerOracle"
	var indexes [IndexCount]uint8
	if fee < types.OracleRegistrationFee {
		return indexes, types.NewValidationError(
			op,
			"minimum fee required for registration",
		)
	}
	existing, err := c.db.GetOracle(txn, caller)
	if err != nil {
		return indexes, err
	}
	if existing != nil {
		return indexes, types.NewValidationError(
			op,
			"oracle is already registered",
		)
	}
	for i := range indexes {
		// Redraw until the value differs from those already assigned
		for {
			index := uint8(c.rng.IntN(IndexRange))
			if !hasIndex(indexes[:i], index) {
				indexes[i] = index
				break
			}
		}
	}
	tmpOracle := &models.Oracle{
		Address: caller.Bytes(),
		Indexes: indexes[:],
	}
	if err := c.db.SetOracle(txn, tmpOracle); err != nil {
		return indexes, err
	}
	if err := c.db.AddTreasury(txn, fee); err != nil {
		return indexes, err
	}
	c.logger.Info(
		"oracle registered",
		"oracle", caller.String(),
		"indexes", indexes[:],
		"component", "oracle",
	)
	return indexes, nil
}

// Indexes returns the caller's assigned index values
func (c *Coordinator) Indexes(
	txn *database.Txn,
	caller types.Address,
) ([IndexCount]uint8, error) {
	var indexes [IndexCount]uint8
	tmpOracle, err := c.db.GetOracle(txn, caller)
	if err != nil {
		return indexes, err
	}
	if tmpOracle == nil {
		return indexes, types.NewAuthorizationError(
			"oracleIndexes",
			"caller is not a registered oracle",
		)
	}
	copy(indexes[:], tmpOracle.Indexes)
	return indexes, nil
}

// OpenRequest opens a status-fetch request for a flight under a freshly
// drawn random index and returns the index. Requests for an already
// resolved flight are rejected
func (c *Coordinator) OpenRequest(
	txn *database.Txn,
	flight *models.Flight,
) (uint8, error) {
	const op = "fetchFlightStatus"
	if types.StatusCode(flight.Status).IsTerminal() {
		return 0, types.NewValidationError(
			op,
			"flight status is already fetched",
		)
	}
	index := uint8(c.rng.IntN(IndexRange))
	tmpRequest := &models.OracleRequest{
		FlightKey: flight.Key,
		Airline:   flight.Airline,
		Number:    flight.Number,
		Timestamp: flight.Timestamp,
		Index:     index,
		Open:      true,
	}
	if err := c.db.AddOracleRequest(txn, tmpRequest); err != nil {
		return 0, err
	}
	c.logger.Info(
		"oracle request opened",
		"index", index,
		"number", flight.Number,
		"timestamp", flight.Timestamp,
		"component", "oracle",
	)
	return index, nil
}

// SubmitResponse records an oracle's status report against the matching
// open request. The caller must hold the request's index, may report at
// most once per request, and the report must name an open request exactly.
// Returns the request and whether this report completed a quorum of
// MinResponses matching reports
func (c *Coordinator) SubmitResponse(
	txn *database.Txn,
	caller types.Address,
	index uint8,
	airline types.Address,
	number string,
	timestamp int64,
	status types.StatusCode,
) (*models.OracleRequest, bool, error) {
	const op = "submitOracleResponse"
	tmpOracle, err := c.db.GetOracle(txn, caller)
	if err != nil {
		return nil, false, err
	}
	if tmpOracle == nil {
		return nil, false, types.NewAuthorizationError(
			op,
			"caller is not a registered oracle",
		)
	}
	if !hasIndex(tmpOracle.Indexes, index) {
		return nil, false, types.NewValidationError(
			op,
			"index does not match oracle request",
		)
	}
	tmpRequest, err := c.db.GetOpenOracleRequest(
		txn,
		index,
		airline,
		number,
		timestamp,
	)
	if err != nil {
		return nil, false, err
	}
	if tmpRequest == nil {
		return nil, false, types.NewValidationError(
			op,
			"flight or timestamp does not match oracle request",
		)
	}
	responded, err := c.db.HasOracleResponse(txn, tmpRequest.ID, caller)
	if err != nil {
		return nil, false, err
	}
	if responded {
		return nil, false, types.NewValidationError(
			op,
			"response is already submitted",
		)
	}
	tmpResponse := &models.OracleResponse{
		RequestID: tmpRequest.ID,
		Oracle:    caller.Bytes(),
		Status:    uint8(status),
	}
	if err := c.db.AddOracleResponse(txn, tmpResponse); err != nil {
		return nil, false, err
	}
	count, err := c.db.CountOracleResponses(txn, tmpRequest.ID, status)
	if err != nil {
		return nil, false, err
	}
	c.logger.Debug(
		"oracle response recorded",
		"oracle", caller.String(),
		"index", index,
		"status", uint8(status),
		"count", count,
		"component", "oracle",
	)
	return tmpRequest, count >= MinResponses, nil
}

// CloseRequests closes every open request for a resolved flight. Reports
// against closed requests are rejected
func (c *Coordinator) CloseRequests(
	txn *database.Txn,
	flightKey types.FlightKey,
) error {
	return c.db.CloseOracleRequests(txn, flightKey)
}

func hasIndex(indexes []byte, index uint8) bool {
	for _, tmpIndex := range indexes {
		if tmpIndex == index {
			return true
		}
	}
	return false
}
