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

// GetPolicy fetches a policy by its derived key. Returns nil when not found
func (d *Database) GetPolicy(
	txn *Txn,
	key []byte,
) (*models.Policy, error) {
	ret := &models.Policy{}
	result := txn.Metadata().Where("key = ?", key).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetPolicy saves a policy record, creating it if needed
func (d *Database) SetPolicy(txn *Txn, policy *models.Policy) error {
	result := txn.Metadata().Save(policy)
	return result.Error
}

// GetPoliciesForFlight returns all policies on a flight in purchase order
func (d *Database) GetPoliciesForFlight(
	txn *Txn,
	flightKey types.FlightKey,
) ([]models.Policy, error) {
	var ret []models.Policy
	result := txn.Metadata().
		Where("flight_key = ?", flightKey.Bytes()).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetInsureeBalance returns the recorded balance for an insuree, zero for
// unknown addresses
func (d *Database) GetInsureeBalance(
	txn *Txn,
	addr types.Address,
) (types.Amount, error) {
	ret := &models.InsureeBalance{}
	result := txn.Metadata().Where("address = ?", addr.Bytes()).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return types.Amount(ret.Amount), nil
}

// AddInsureeBalance credits an insuree's recorded balance
func (d *Database) AddInsureeBalance(
	txn *Txn,
	addr types.Address,
	delta types.Amount,
) error {
	tmpBalance := &models.InsureeBalance{}
	result := txn.Metadata().
		FirstOrCreate(tmpBalance, models.InsureeBalance{Address: addr.Bytes()})
	if result.Error != nil {
		return result.Error
	}
	tmpBalance.Amount += uint64(delta)
	if result := txn.Metadata().Save(tmpBalance); result.Error != nil {
		return result.Error
	}
	return nil
}

// SubInsureeBalance debits an insuree's recorded balance. The caller is
// responsible for checking sufficiency first
func (d *Database) SubInsureeBalance(
	txn *Txn,
	addr types.Address,
	delta types.Amount,
) error {
	ret := &models.InsureeBalance{}
	result := txn.Metadata().Where("address = ?", addr.Bytes()).First(ret)
	if result.Error != nil {
		return result.Error
	}
	if ret.Amount < uint64(delta) {
		return errors.New("insuree balance underflow")
	}
	ret.Amount -= uint64(delta)
	if result := txn.Metadata().Save(ret); result.Error != nil {
		return result.Error
	}
	return nil
}
