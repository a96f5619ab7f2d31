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

package database

import (
	"errors"

	"github.com/flightsurety/surety/database/models"
	"github.com/flightsurety/surety/types"

	"gorm.io/gorm"
)

// GetOracle fetches an oracle by address. Returns nil when not found
func (d *Database) GetOracle(
	txn *Txn,
	addr types.Address,
) (*models.Oracle, error) {
	ret := &models.Oracle{}
	result := txn.Metadata().Where("address = ?", addr.Bytes()).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetOracle saves an oracle record
func (d *Database) SetOracle(txn *Txn, oracle *models.Oracle) error {
	result := txn.Metadata().Save(oracle)
	return result.Error
}

// AddOracleRequest opens a new status-fetch request
func (d *Database) AddOracleRequest(
	txn *Txn,
	request *models.OracleRequest,
) error {
	result := txn.Metadata().Create(request)
	return result.Error
}

// GetOpenOracleRequest finds the open request matching the given index and
// flight identity. Returns nil when no such request is open
func (d *Database) GetOpenOracleRequest(
	txn *Txn,
	index uint8,
	airline types.Address,
	number string,
	timestamp int64,
) (*models.OracleRequest, error) {
	ret := &models.OracleRequest{}
	result := txn.Metadata().
		Where(
			"`index` = ? AND airline = ? AND number = ? AND timestamp = ? AND open = ?",
			index,
			airline.Bytes(),
			number,
			timestamp,
			true,
		).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// CloseOracleRequests closes every open request for a flight. Called when
// the flight reaches its terminal status
func (d *Database) CloseOracleRequests(
	txn *Txn,
	flightKey types.FlightKey,
) error {
	result := txn.Metadata().
		Model(&models.OracleRequest{}).
		Where("flight_key = ? AND open = ?", flightKey.Bytes(), true).
		Update("open", false)
	return result.Error
}

// CountOpenOracleRequests returns the number of currently open requests
func (d *Database) CountOpenOracleRequests(txn *Txn) (int, error) {
	var count int64
	result := txn.Metadata().
		Model(&models.OracleRequest{}).
		Where("open = ?", true).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}

// HasOracleResponse returns true if the oracle has already responded to the
// request
func (d *Database) HasOracleResponse(
	txn *Txn,
	requestId uint,
	oracle types.Address,
) (bool, error) {
	var count int64
	result := txn.Metadata().
		Model(&models.OracleResponse{}).
		Where("request_id = ? AND oracle = ?", requestId, oracle.Bytes()).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// AddOracleResponse records an oracle's report for an open request
func (d *Database) AddOracleResponse(
	txn *Txn,
	response *models.OracleResponse,
) error {
	result := txn.Metadata().Create(response)
	return result.Error
}

// CountOracleResponses returns the number of oracles that reported the
// given status code for a request
func (d *Database) CountOracleResponses(
	txn *Txn,
	requestId uint,
	status types.StatusCode,
) (int, error) {
	var count int64
	result := txn.Metadata().
		Model(&models.OracleResponse{}).
		Where("request_id = ? AND status = ?", requestId, uint8(status)).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}
