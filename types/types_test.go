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

package types_test

import (
	"testing"

	"github.com/flightsurety/surety/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressHexRoundTrip(t *testing.T) {
	orig := "0x00000000000000000000000000000000000000ff"
	parsed, err := types.HexToAddress(orig)
	require.NoError(t, err)
	assert.Equal(t, orig, parsed.String())
	// Prefix is optional
	parsed2, err := types.HexToAddress(orig[2:])
	require.NoError(t, err)
	assert.Equal(t, parsed, parsed2)
	// Wrong length is rejected
	_, err = types.HexToAddress("0x1234")
	require.ErrorContains(t, err, "invalid address length")
	// Bad hex is rejected
	_, err = types.HexToAddress("0xzz000000000000000000000000000000000000zz")
	require.ErrorContains(t, err, "invalid address hex")
}

func TestComputeFlightKeyDeterminism(t *testing.T) {
	var airline types.Address
	airline[types.AddressSize-1] = 2
	key1 := types.ComputeFlightKey(airline, "FS1234", 1700000000)
	key2 := types.ComputeFlightKey(airline, "FS1234", 1700000000)
	assert.Equal(t, key1, key2)
	// Any component change yields a different key
	assert.NotEqual(
		t,
		key1,
		types.ComputeFlightKey(airline, "FS1235", 1700000000),
	)
	assert.NotEqual(
		t,
		key1,
		types.ComputeFlightKey(airline, "FS1234", 1700000001),
	)
	var other types.Address
	other[types.AddressSize-1] = 3
	assert.NotEqual(
		t,
		key1,
		types.ComputeFlightKey(other, "FS1234", 1700000000),
	)
}

func TestComputePolicyKey(t *testing.T) {
	var holder types.Address
	holder[types.AddressSize-1] = 5
	var airline types.Address
	airline[types.AddressSize-1] = 2
	flightKey := types.ComputeFlightKey(airline, "FS1234", 1700000000)
	key1 := types.ComputePolicyKey(holder, flightKey)
	key2 := types.ComputePolicyKey(holder, flightKey)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, types.FlightKeySize)
	var other types.Address
	other[types.AddressSize-1] = 6
	assert.NotEqual(t, key1, types.ComputePolicyKey(other, flightKey))
}

func TestStatusCodeTerminal(t *testing.T) {
	assert.False(t, types.StatusUnknown.IsTerminal())
	for _, status := range []types.StatusCode{
		types.StatusOnTime,
		types.StatusLateAirline,
		types.StatusLateWeather,
		types.StatusLateTechnical,
		types.StatusLateOther,
	} {
		assert.True(t, status.IsTerminal())
	}
}

func TestErrorMessages(t *testing.T) {
	err := types.NewValidationError("buyInsurance", "premium exceeds maximum")
	assert.Equal(t, "buyInsurance: premium exceeds maximum", err.Error())
	fundsErr := types.NewInsufficientFundsError("withdraw", "amount exceeds balance", 200, 100)
	assert.Equal(
		t,
		"withdraw: amount exceeds balance: requested 200, available 100",
		fundsErr.Error(),
	)
}
