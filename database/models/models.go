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

package models

// MigrateModels is the list of model schemas created on database open
var MigrateModels = []any{
	&LedgerState{},
	&AuthorizedCaller{},
	&Airline{},
	&AirlineVote{},
	&Flight{},
	&Oracle{},
	&OracleRequest{},
	&OracleResponse{},
	&Policy{},
	&InsureeBalance{},
}

// LedgerState is the single-row table holding process-wide ledger state:
// the owner, the operational flag, the on-hand currency holdings, and the
// next event log sequence number
type LedgerState struct {
	ID           uint   `gorm:"primarykey"`
	Owner        []byte `gorm:"size:20"`
	Operational  bool
	Treasury     uint64
	NextEventSeq uint64
}

func (LedgerState) TableName() string {
	return "ledger_state"
}

type AuthorizedCaller struct {
	ID      uint   `gorm:"primarykey"`
	Address []byte `gorm:"uniqueIndex;size:20"`
}

func (AuthorizedCaller) TableName() string {
	return "authorized_caller"
}

type Airline struct {
	ID         uint   `gorm:"primarykey"`
	Address    []byte `gorm:"uniqueIndex;size:20"`
	Name       string
	Registered bool
	Validated  bool
	Balance    uint64
}

func (Airline) TableName() string {
	return "airline"
}

// AirlineVote records a single distinct admission vote for a candidate
// airline. Votes are deleted once the candidate becomes registered
type AirlineVote struct {
	ID        uint   `gorm:"primarykey"`
	Candidate []byte `gorm:"index:idx_airline_vote,unique;size:20"`
	Voter     []byte `gorm:"index:idx_airline_vote,unique;size:20"`
}

func (AirlineVote) TableName() string {
	return "airline_vote"
}

type Flight struct {
	ID        uint   `gorm:"primarykey"`
	Key       []byte `gorm:"uniqueIndex;size:32"`
	Airline   []byte `gorm:"index;size:20"`
	Number    string `gorm:"index"`
	Timestamp int64
	Status    uint8
}

func (Flight) TableName() string {
	return "flight"
}

type Oracle struct {
	ID      uint   `gorm:"primarykey"`
	Address []byte `gorm:"uniqueIndex;size:20"`
	// Indexes holds the three assigned index values, one per byte
	Indexes []byte `gorm:"size:3"`
}

func (Oracle) TableName() string {
	return "oracle"
}

// OracleRequest is an open status-fetch request. Closed (Open=false) once
// the flight it references is resolved
type OracleRequest struct {
	ID        uint   `gorm:"primarykey"`
	FlightKey []byte `gorm:"index;size:32"`
	Airline   []byte `gorm:"size:20"`
	Number    string
	Timestamp int64
	Index     uint8
	Open      bool
}

func (OracleRequest) TableName() string {
	return "oracle_request"
}

// OracleResponse records one oracle's report for an open request. The
// unique (request, oracle) index enforces anti-replay
type OracleResponse struct {
	ID        uint   `gorm:"primarykey"`
	RequestID uint   `gorm:"index:idx_oracle_response,unique"`
	Oracle    []byte `gorm:"index:idx_oracle_response,unique;size:20"`
	Status    uint8
}

func (OracleResponse) TableName() string {
	return "oracle_response"
}

type Policy struct {
	ID        uint   `gorm:"primarykey"`
	Key       []byte `gorm:"uniqueIndex;size:32"`
	FlightKey []byte `gorm:"index;size:32"`
	Holder    []byte `gorm:"index;size:20"`
	Amount    uint64
	Credited  bool
}

func (Policy) TableName() string {
	return "policy"
}

type InsureeBalance struct {
	ID      uint   `gorm:"primarykey"`
	Address []byte `gorm:"uniqueIndex;size:20"`
	Amount  uint64
}

func (InsureeBalance) TableName() string {
	return "insuree_balance"
}
