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
	"fmt"

	"github.com/flightsurety/surety/database/models"
	"github.com/flightsurety/surety/types"

	"gorm.io/gorm"
)

// LedgerState fetches the single-row ledger state. Returns nil when the
// ledger has not been bootstrapped yet
func (d *Database) LedgerState(txn *Txn) (*models.LedgerState, error) {
	ret := &models.LedgerState{}
	result := txn.Metadata().First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// InitLedgerState creates the ledger state row on first startup. The ledger
// starts operational with the given owner. A no-op if the row already exists
func (d *Database) InitLedgerState(
	txn *Txn,
	owner types.Address,
) (bool, error) {
	existing, err := d.LedgerState(txn)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	tmpState := &models.LedgerState{
		Owner:       owner.Bytes(),
		Operational: true,
	}
	if result := txn.Metadata().Create(tmpState); result.Error != nil {
		return false, result.Error
	}
	return true, nil
}

func (d *Database) updateLedgerState(
	txn *Txn,
	update func(*models.LedgerState),
) error {
	state, err := d.LedgerState(txn)
	if err != nil {
		return err
	}
	if state == nil {
		return errors.New("ledger state not initialized")
	}
	update(state)
	if result := txn.Metadata().Save(state); result.Error != nil {
		return result.Error
	}
	return nil
}

// SetOperational stores the operational flag
func (d *Database) SetOperational(txn *Txn, value bool) error {
	return d.updateLedgerState(txn, func(s *models.LedgerState) {
		s.Operational = value
	})
}

// AddTreasury increases the recorded on-hand currency holdings
func (d *Database) AddTreasury(txn *Txn, delta types.Amount) error {
	return d.updateLedgerState(txn, func(s *models.LedgerState) {
		s.Treasury += uint64(delta)
	})
}

// SubTreasury decreases the recorded on-hand currency holdings. The caller
// is responsible for checking sufficiency first
func (d *Database) SubTreasury(txn *Txn, delta types.Amount) error {
	state, err := d.LedgerState(txn)
	if err != nil {
		return err
	}
	if state == nil {
		return errors.New("ledger state not initialized")
	}
	if state.Treasury < uint64(delta) {
		return fmt.Errorf(
			"treasury underflow: have %d, need %d",
			state.Treasury,
			delta,
		)
	}
	state.Treasury -= uint64(delta)
	if result := txn.Metadata().Save(state); result.Error != nil {
		return result.Error
	}
	return nil
}

// AllocEventSeq returns the next event log sequence number and advances the
// counter within the transaction
func (d *Database) AllocEventSeq(txn *Txn) (uint64, error) {
	state, err := d.LedgerState(txn)
	if err != nil {
		return 0, err
	}
	if state == nil {
		return 0, errors.New("ledger state not initialized")
	}
	seq := state.NextEventSeq
	state.NextEventSeq++
	if result := txn.Metadata().Save(state); result.Error != nil {
		return 0, result.Error
	}
	return seq, nil
}

// AddAuthorizedCaller grants an address permission to invoke privileged
// operations
func (d *Database) AddAuthorizedCaller(
	txn *Txn,
	addr types.Address,
) error {
	tmpCaller := &models.AuthorizedCaller{}
	result := txn.Metadata().
		FirstOrCreate(tmpCaller, models.AuthorizedCaller{Address: addr.Bytes()})
	return result.Error
}

// RemoveAuthorizedCaller revokes a previously granted authorization
func (d *Database) RemoveAuthorizedCaller(
	txn *Txn,
	addr types.Address,
) error {
	result := txn.Metadata().
		Where("address = ?", addr.Bytes()).
		Delete(&models.AuthorizedCaller{})
	return result.Error
}

// IsAuthorizedCaller returns true if the address is in the authorized
// caller set. The owner is handled separately and is implicitly authorized
func (d *Database) IsAuthorizedCaller(
	txn *Txn,
	addr types.Address,
) (bool, error) {
	var count int64
	result := txn.Metadata().
		Model(&models.AuthorizedCaller{}).
		Where("address = ?", addr.Bytes()).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
