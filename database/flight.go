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

// GetFlight fetches a flight by its derived key. Returns nil when not found
func (d *Database) GetFlight(
	txn *Txn,
	key types.FlightKey,
) (*models.Flight, error) {
	ret := &models.Flight{}
	result := txn.Metadata().Where("key = ?", key.Bytes()).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetFlightByNumber fetches the earliest-registered flight with the given
// number. Returns nil when not found
func (d *Database) GetFlightByNumber(
	txn *Txn,
	number string,
) (*models.Flight, error) {
	ret := &models.Flight{}
	result := txn.Metadata().
		Where("number = ?", number).
		Order("id").
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetFlightByAirlineNumber fetches a flight by (airline, number). Returns
// nil when not found
func (d *Database) GetFlightByAirlineNumber(
	txn *Txn,
	airline types.Address,
	number string,
) (*models.Flight, error) {
	ret := &models.Flight{}
	result := txn.Metadata().
		Where("airline = ? AND number = ?", airline.Bytes(), number).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetFlight saves a flight record, creating it if needed
func (d *Database) SetFlight(txn *Txn, flight *models.Flight) error {
	result := txn.Metadata().Save(flight)
	return result.Error
}

// GetAllFlightKeys returns all registered flight keys in registration order
func (d *Database) GetAllFlightKeys(txn *Txn) ([]types.FlightKey, error) {
	var flights []models.Flight
	result := txn.Metadata().
		Select("key").
		Order("id").
		Find(&flights)
	if result.Error != nil {
		return nil, result.Error
	}
	ret := make([]types.FlightKey, 0, len(flights))
	for _, tmpFlight := range flights {
		key, err := types.FlightKeyFromBytes(tmpFlight.Key)
		if err != nil {
			return nil, err
		}
		ret = append(ret, key)
	}
	return ret, nil
}
