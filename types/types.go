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

package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Amount is a currency amount in micro-units of the configured denomination
type Amount uint64

// Denomination is the number of micro-units in one whole unit
const Denomination Amount = 1_000_000

const (
	// MinAirlineFunding is the minimum funding fee required before an
	// airline becomes validated
	MinAirlineFunding = 10 * Denomination
	// OracleRegistrationFee is the minimum payment required to register
	// an oracle
	OracleRegistrationFee = 1 * Denomination
	// MaxInsurancePremium is the cap on a single insurance purchase
	MaxInsurancePremium = 1 * Denomination
)

// StatusCode is a flight status reported by oracles. A flight starts at
// StatusUnknown and transitions exactly once to a terminal code.
type StatusCode uint8

const (
	StatusUnknown        StatusCode = 0
	StatusOnTime         StatusCode = 10
	StatusLateAirline    StatusCode = 20
	StatusLateWeather    StatusCode = 30
	StatusLateTechnical  StatusCode = 40
	StatusLateOther      StatusCode = 50
)

// IsTerminal returns true for any status other than StatusUnknown
func (s StatusCode) IsTerminal() bool {
	return s != StatusUnknown
}

const AddressSize = 20

// Address identifies a caller (airline, oracle, insuree, or owner)
type Address [AddressSize]byte

var ZeroAddress = Address{}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// AddressFromBytes converts a byte slice into an Address
func AddressFromBytes(b []byte) (Address, error) {
	var ret Address
	if len(b) != AddressSize {
		return ret, fmt.Errorf("invalid address length: %d", len(b))
	}
	copy(ret[:], b)
	return ret, nil
}

// MarshalText implements encoding.TextMarshaler, rendering the address as
// 0x-prefixed hex for JSON and log output
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	tmp, err := HexToAddress(string(text))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// HexToAddress parses a hex-encoded address with optional 0x prefix
func HexToAddress(s string) (Address, error) {
	var ret Address
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("invalid address hex: %w", err)
	}
	return AddressFromBytes(b)
}

const FlightKeySize = 32

// FlightKey is the canonical flight identifier, derived from the airline
// address, flight number, and departure timestamp
type FlightKey [FlightKeySize]byte

func (k FlightKey) Bytes() []byte {
	return k[:]
}

func (k FlightKey) String() string {
	return hex.EncodeToString(k[:])
}

// FlightKeyFromBytes converts a byte slice into a FlightKey
func FlightKeyFromBytes(b []byte) (FlightKey, error) {
	var ret FlightKey
	if len(b) != FlightKeySize {
		return ret, fmt.Errorf("invalid flight key length: %d", len(b))
	}
	copy(ret[:], b)
	return ret, nil
}

// ComputeFlightKey derives the canonical key for a flight. Keccak-256 over
// the packed (airline, number, timestamp) tuple, matching the derivation
// used for policy keys
func ComputeFlightKey(
	airline Address,
	number string,
	timestamp int64,
) FlightKey {
	h := sha3.NewLegacyKeccak256()
	h.Write(airline.Bytes())
	h.Write([]byte(number))
	tmpTimestamp := make([]byte, 8)
	binary.BigEndian.PutUint64(tmpTimestamp, uint64(timestamp)) //nolint:gosec
	h.Write(tmpTimestamp)
	var ret FlightKey
	copy(ret[:], h.Sum(nil))
	return ret
}

// ComputePolicyKey derives the unique key for an insurance policy from the
// policy holder and the flight key
func ComputePolicyKey(holder Address, flightKey FlightKey) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(holder.Bytes())
	h.Write(flightKey.Bytes())
	return h.Sum(nil)
}
