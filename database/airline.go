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

// GetAirline fetches an airline by address. Returns nil when not found
func (d *Database) GetAirline(
	txn *Txn,
	addr types.Address,
) (*models.Airline, error) {
	ret := &models.Airline{}
	result := txn.Metadata().Where("address = ?", addr.Bytes()).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetAirline saves an airline record, creating it if needed
func (d *Database) SetAirline(txn *Txn, airline *models.Airline) error {
	result := txn.Metadata().Save(airline)
	return result.Error
}

// CountValidatedAirlines returns the number of currently validated airlines
func (d *Database) CountValidatedAirlines(txn *Txn) (int, error) {
	var count int64
	result := txn.Metadata().
		Model(&models.Airline{}).
		Where("validated = ?", true).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}

// AddAirlineVote records a distinct admission vote. Returns false when the
// voter has already voted for this candidate
func (d *Database) AddAirlineVote(
	txn *Txn,
	candidate, voter types.Address,
) (bool, error) {
	var count int64
	result := txn.Metadata().
		Model(&models.AirlineVote{}).
		Where("candidate = ? AND voter = ?", candidate.Bytes(), voter.Bytes()).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	if count > 0 {
		return false, nil
	}
	tmpVote := &models.AirlineVote{
		Candidate: candidate.Bytes(),
		Voter:     voter.Bytes(),
	}
	if result := txn.Metadata().Create(tmpVote); result.Error != nil {
		return false, result.Error
	}
	return true, nil
}

// CountAirlineVotes returns the number of distinct votes recorded for a
// candidate
func (d *Database) CountAirlineVotes(
	txn *Txn,
	candidate types.Address,
) (int, error) {
	var count int64
	result := txn.Metadata().
		Model(&models.AirlineVote{}).
		Where("candidate = ?", candidate.Bytes()).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}

// ClearAirlineVotes deletes the pending vote record for a candidate. Called
// once the candidate becomes registered
func (d *Database) ClearAirlineVotes(
	txn *Txn,
	candidate types.Address,
) error {
	result := txn.Metadata().
		Where("candidate = ?", candidate.Bytes()).
		Delete(&models.AirlineVote{})
	return result.Error
}
