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

package surety_test

import (
	"testing"
	"time"

	surety "github.com/flightsurety/surety"
	"github.com/flightsurety/surety/event"
	"github.com/flightsurety/surety/oracle"
	"github.com/flightsurety/surety/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner        = addr(1)
	testFirstAirline = addr(2)
)

func addr(n byte) types.Address {
	var ret types.Address
	ret[types.AddressSize-1] = n
	return ret
}

func newTestLedger(t *testing.T) *surety.Ledger {
	t.Helper()
	l, err := surety.New(
		surety.NewConfig(
			surety.WithDatabasePath(t.TempDir()),
			surety.WithOwner(testOwner),
			surety.WithFirstAirline(testFirstAirline, "First Air"),
			surety.WithRandSeed(42),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = l.Stop()
	})
	return l
}

// fundedTestLedger returns a ledger with the first airline validated
func fundedTestLedger(t *testing.T) *surety.Ledger {
	t.Helper()
	l := newTestLedger(t)
	require.NoError(t, l.FundAirline(testFirstAirline, types.MinAirlineFunding))
	return l
}

func TestLedgerConfigValidation(t *testing.T) {
	_, err := surety.New(surety.NewConfig())
	require.ErrorContains(t, err, "invalid configuration")
	_, err = surety.New(
		surety.NewConfig(
			surety.WithOwner(testOwner),
		),
	)
	require.ErrorContains(t, err, "no first airline defined")
}

func TestFirstAirlineMustFundBeforeRegistering(t *testing.T) {
	l := newTestLedger(t)
	// The first airline is registered at bootstrap but not yet validated
	validated, err := l.IsAirlineValidated(testFirstAirline)
	require.NoError(t, err)
	assert.False(t, validated)
	_, _, err = l.RegisterAirline(testFirstAirline, addr(3), "Second Air")
	var authErr *types.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	// Funding with the minimum fee validates the airline
	require.NoError(t, l.FundAirline(testFirstAirline, types.MinAirlineFunding))
	validated, err = l.IsAirlineValidated(testFirstAirline)
	require.NoError(t, err)
	assert.True(t, validated)
	balance, err := l.AirlineBalance(testFirstAirline)
	require.NoError(t, err)
	assert.Equal(t, types.MinAirlineFunding, balance)
}

func TestFundAirlineBelowMinimum(t *testing.T) {
	l := newTestLedger(t)
	err := l.FundAirline(testFirstAirline, types.MinAirlineFunding-1)
	var validationErr *types.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestFundAirlineUnregistered(t *testing.T) {
	l := newTestLedger(t)
	err := l.FundAirline(addr(99), types.MinAirlineFunding)
	var authErr *types.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestAirlineRegistrationBootstrapRegime(t *testing.T) {
	l := fundedTestLedger(t)
	// Below four validated airlines a single vote admits the candidate
	for i, name := range []string{"Second Air", "Third Air", "Fourth Air"} {
		candidate := addr(byte(3 + i))
		votes, registered, err := l.RegisterAirline(
			testFirstAirline,
			candidate,
			name,
		)
		require.NoError(t, err)
		assert.True(t, registered)
		assert.Equal(t, 1, votes)
		require.NoError(t, l.FundAirline(candidate, types.MinAirlineFunding))
	}
}

func TestAirlineRegistrationMultiPartyRegime(t *testing.T) {
	l := fundedTestLedger(t)
	validated := []types.Address{testFirstAirline}
	// Validate three more airlines to leave the bootstrap regime
	for i := range 3 {
		candidate := addr(byte(3 + i))
		_, _, err := l.RegisterAirline(testFirstAirline, candidate, "Air")
		require.NoError(t, err)
		require.NoError(t, l.FundAirline(candidate, types.MinAirlineFunding))
		validated = append(validated, candidate)
	}
	// With four validated airlines, admission requires two distinct votes
	candidate := addr(10)
	votes, registered, err := l.RegisterAirline(
		testFirstAirline,
		candidate,
		"Fifth Air",
	)
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Equal(t, 1, votes)
	// A repeat vote from the same voter is a silent no-op
	votes, registered, err = l.RegisterAirline(
		testFirstAirline,
		candidate,
		"Fifth Air",
	)
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Equal(t, 1, votes)
	// A second distinct vote reaches the threshold
	votes, registered, err = l.RegisterAirline(addr(3), candidate, "Fifth Air")
	require.NoError(t, err)
	assert.True(t, registered)
	assert.Equal(t, 2, votes)
	require.NoError(t, l.FundAirline(candidate, types.MinAirlineFunding))
	validated = append(validated, candidate)
	// Admission keeps requiring a majority of the validated set as it
	// grows: 3 of 5, 3 of 6, 4 of 7
	for _, next := range []types.Address{addr(11), addr(12), addr(13)} {
		threshold := (len(validated) + 1) / 2
		for i, voter := range validated[:threshold] {
			votes, registered, err = l.RegisterAirline(voter, next, "Later Air")
			require.NoError(t, err)
			assert.Equal(t, i+1, votes)
			assert.Equal(t, i == threshold-1, registered)
		}
		require.NoError(t, l.FundAirline(next, types.MinAirlineFunding))
		validated = append(validated, next)
	}
}

func TestRegisterAirlineInvalidCandidate(t *testing.T) {
	l := fundedTestLedger(t)
	var validationErr *types.ValidationError
	_, _, err := l.RegisterAirline(
		testFirstAirline,
		types.ZeroAddress,
		"Nowhere Air",
	)
	require.ErrorAs(t, err, &validationErr)
	// Registering an existing airline is rejected
	_, _, err = l.RegisterAirline(
		testFirstAirline,
		testFirstAirline,
		"First Air",
	)
	require.ErrorAs(t, err, &validationErr)
}

func TestRegisterFlight(t *testing.T) {
	l := fundedTestLedger(t)
	timestamp := time.Now().Unix()
	key, err := l.RegisterFlight(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	assert.Equal(
		t,
		types.ComputeFlightKey(testFirstAirline, "FS1234", timestamp),
		key,
	)
	// The same number under the same airline is rejected, whatever the
	// timestamp
	_, err = l.RegisterFlight(testFirstAirline, "FS1234", timestamp)
	var validationErr *types.ValidationError
	require.ErrorAs(t, err, &validationErr)
	_, err = l.RegisterFlight(testFirstAirline, "FS1234", timestamp+3600)
	require.ErrorAs(t, err, &validationErr)
	// Unvalidated callers cannot register flights
	_, err = l.RegisterFlight(addr(99), "FS5678", timestamp)
	var authErr *types.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	// Lookup by number
	info, err := l.FlightDetails("FS1234")
	require.NoError(t, err)
	assert.Equal(t, testFirstAirline, info.Airline)
	assert.Equal(t, types.StatusUnknown, info.Status)
	// An unknown number yields the sentinel zero record
	info, err = l.FlightDetails("FS0000")
	require.NoError(t, err)
	assert.Equal(t, &surety.FlightInfo{}, info)
	keys, err := l.AllFlights()
	require.NoError(t, err)
	assert.Equal(t, []types.FlightKey{key}, keys)
}

func TestBuyInsuranceBounds(t *testing.T) {
	l := fundedTestLedger(t)
	timestamp := time.Now().Unix()
	_, err := l.RegisterFlight(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	passenger := addr(50)
	var validationErr *types.ValidationError
	// Premium above the cap is rejected
	err = l.BuyInsurance(
		passenger,
		testFirstAirline,
		"FS1234",
		timestamp,
		types.MaxInsurancePremium+1,
	)
	require.ErrorAs(t, err, &validationErr)
	// Zero premium is rejected
	err = l.BuyInsurance(passenger, testFirstAirline, "FS1234", timestamp, 0)
	require.ErrorAs(t, err, &validationErr)
	// Unknown flight is rejected
	err = l.BuyInsurance(
		passenger,
		testFirstAirline,
		"FS0000",
		timestamp,
		types.MaxInsurancePremium,
	)
	require.ErrorAs(t, err, &validationErr)
	// At the cap is accepted
	err = l.BuyInsurance(
		passenger,
		testFirstAirline,
		"FS1234",
		timestamp,
		types.MaxInsurancePremium,
	)
	require.NoError(t, err)
	// One policy per (holder, flight) pair
	err = l.BuyInsurance(
		passenger,
		testFirstAirline,
		"FS1234",
		timestamp,
		types.MaxInsurancePremium,
	)
	require.ErrorAs(t, err, &validationErr)
}

func TestRegisterOracle(t *testing.T) {
	l := newTestLedger(t)
	oracleAddr := addr(100)
	var validationErr *types.ValidationError
	_, err := l.RegisterOracle(oracleAddr, types.OracleRegistrationFee-1)
	require.ErrorAs(t, err, &validationErr)
	indexes, err := l.RegisterOracle(oracleAddr, types.OracleRegistrationFee)
	require.NoError(t, err)
	for _, index := range indexes {
		assert.Less(t, index, uint8(oracle.IndexRange))
	}
	// Indexes are stable across lookups
	lookup, err := l.OracleIndexes(oracleAddr)
	require.NoError(t, err)
	assert.Equal(t, indexes, lookup)
	// Duplicate registration is rejected
	_, err = l.RegisterOracle(oracleAddr, types.OracleRegistrationFee)
	require.ErrorAs(t, err, &validationErr)
	// Unregistered oracles have no indexes
	var authErr *types.AuthorizationError
	_, err = l.OracleIndexes(addr(101))
	require.ErrorAs(t, err, &authErr)
}

func TestRegisterOracleDistinctIndexes(t *testing.T) {
	l := newTestLedger(t)
	// No oracle may be dealt the same index twice
	for i := range 100 {
		oracleAddr := addr(byte(100 + i))
		indexes, err := l.RegisterOracle(oracleAddr, types.OracleRegistrationFee)
		require.NoError(t, err)
		assert.NotEqual(t, indexes[0], indexes[1])
		assert.NotEqual(t, indexes[0], indexes[2])
		assert.NotEqual(t, indexes[1], indexes[2])
	}
}

// registerOraclesForIndexes registers oracles until every index value has at
// least minHolders holders, returning the holders per index
func registerOraclesForIndexes(
	t *testing.T,
	l *surety.Ledger,
	minHolders int,
) map[uint8][]types.Address {
	t.Helper()
	holders := make(map[uint8][]types.Address)
	enough := func() bool {
		for index := range uint8(oracle.IndexRange) {
			if len(holders[index]) < minHolders {
				return false
			}
		}
		return true
	}
	for i := range 200 {
		oracleAddr := addr(byte(100 + i%150))
		if i >= 150 {
			// Extend the address space past one byte
			oracleAddr[types.AddressSize-2] = 1
		}
		indexes, err := l.RegisterOracle(
			oracleAddr,
			types.OracleRegistrationFee,
		)
		require.NoError(t, err)
		for _, index := range indexes {
			holders[index] = append(holders[index], oracleAddr)
		}
		if enough() {
			break
		}
	}
	require.True(t, enough(), "not enough oracles registered per index")
	return holders
}

func TestOracleQuorumSettlement(t *testing.T) {
	l := fundedTestLedger(t)
	timestamp := time.Now().Unix()
	_, err := l.RegisterFlight(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	passenger := addr(50)
	premium := types.MaxInsurancePremium
	require.NoError(
		t,
		l.BuyInsurance(passenger, testFirstAirline, "FS1234", timestamp, premium),
	)
	holders := registerOraclesForIndexes(t, l, oracle.MinResponses+1)
	index, err := l.FetchFlightStatus(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	matching := holders[index]
	// Crediting cost before settlement is the payout for the open policy
	cost, err := l.EstimativeCreditingCost(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	assert.Equal(t, premium+premium/2, cost)
	// Reports below quorum leave the flight unresolved
	for i := range oracle.MinResponses - 1 {
		require.NoError(
			t,
			l.SubmitOracleResponse(
				matching[i],
				index,
				testFirstAirline,
				"FS1234",
				timestamp,
				types.StatusLateAirline,
			),
		)
		status, err := l.FlightStatusInfo(testFirstAirline, "FS1234", timestamp)
		require.NoError(t, err)
		assert.Equal(t, types.StatusUnknown, status)
	}
	// A repeated report from the same oracle is rejected
	var validationErr *types.ValidationError
	err = l.SubmitOracleResponse(
		matching[0],
		index,
		testFirstAirline,
		"FS1234",
		timestamp,
		types.StatusLateAirline,
	)
	require.ErrorAs(t, err, &validationErr)
	// The quorum-completing report resolves the flight
	require.NoError(
		t,
		l.SubmitOracleResponse(
			matching[oracle.MinResponses-1],
			index,
			testFirstAirline,
			"FS1234",
			timestamp,
			types.StatusLateAirline,
		),
	)
	status, err := l.FlightStatusInfo(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	assert.Equal(t, types.StatusLateAirline, status)
	// The payout is one and a half times the premium
	balance, err := l.InsureeBalance(passenger)
	require.NoError(t, err)
	assert.Equal(t, premium+premium/2, balance)
	// Crediting is complete, so the estimative cost drops to zero
	cost, err = l.EstimativeCreditingCost(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(0), cost)
	// Reports against the resolved flight are rejected
	err = l.SubmitOracleResponse(
		matching[oracle.MinResponses],
		index,
		testFirstAirline,
		"FS1234",
		timestamp,
		types.StatusLateAirline,
	)
	require.ErrorAs(t, err, &validationErr)
	// As are repeated status fetches
	_, err = l.FetchFlightStatus(testFirstAirline, "FS1234", timestamp)
	require.ErrorAs(t, err, &validationErr)
	// The insuree can withdraw the credited payout, once
	require.NoError(t, l.Withdraw(passenger, balance))
	newBalance, err := l.InsureeBalance(passenger)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(0), newBalance)
	var fundsErr *types.InsufficientFundsError
	err = l.Withdraw(passenger, balance)
	require.ErrorAs(t, err, &fundsErr)
}

func TestOracleQuorumOnTimeNoPayout(t *testing.T) {
	l := fundedTestLedger(t)
	timestamp := time.Now().Unix()
	_, err := l.RegisterFlight(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	passenger := addr(50)
	require.NoError(
		t,
		l.BuyInsurance(
			passenger,
			testFirstAirline,
			"FS1234",
			timestamp,
			types.MaxInsurancePremium,
		),
	)
	holders := registerOraclesForIndexes(t, l, oracle.MinResponses)
	index, err := l.FetchFlightStatus(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	for i := range oracle.MinResponses {
		require.NoError(
			t,
			l.SubmitOracleResponse(
				holders[index][i],
				index,
				testFirstAirline,
				"FS1234",
				timestamp,
				types.StatusOnTime,
			),
		)
	}
	status, err := l.FlightStatusInfo(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	assert.Equal(t, types.StatusOnTime, status)
	// An on-time resolution credits nothing
	balance, err := l.InsureeBalance(passenger)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(0), balance)
}

func TestSubmitOracleResponseMismatches(t *testing.T) {
	l := fundedTestLedger(t)
	timestamp := time.Now().Unix()
	_, err := l.RegisterFlight(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	holders := registerOraclesForIndexes(t, l, 1)
	index, err := l.FetchFlightStatus(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	var validationErr *types.ValidationError
	// An oracle not holding the request index cannot respond
	otherIndex := (index + 1) % oracle.IndexRange
	var outsider types.Address
	for _, tmpAddr := range holders[otherIndex] {
		indexes, err := l.OracleIndexes(tmpAddr)
		require.NoError(t, err)
		holds := false
		for _, tmpIndex := range indexes {
			if tmpIndex == index {
				holds = true
			}
		}
		if !holds {
			outsider = tmpAddr
			break
		}
	}
	if !outsider.IsZero() {
		err = l.SubmitOracleResponse(
			outsider,
			index,
			testFirstAirline,
			"FS1234",
			timestamp,
			types.StatusOnTime,
		)
		require.ErrorAs(t, err, &validationErr)
	}
	// A report naming the wrong flight identity matches no open request
	err = l.SubmitOracleResponse(
		holders[index][0],
		index,
		testFirstAirline,
		"FS1234",
		timestamp+1,
		types.StatusOnTime,
	)
	require.ErrorAs(t, err, &validationErr)
	// The unknown status code is not a valid report
	err = l.SubmitOracleResponse(
		holders[index][0],
		index,
		testFirstAirline,
		"FS1234",
		timestamp,
		types.StatusUnknown,
	)
	require.ErrorAs(t, err, &validationErr)
	// Unregistered callers cannot respond
	var authErr *types.AuthorizationError
	err = l.SubmitOracleResponse(
		addr(99),
		index,
		testFirstAirline,
		"FS1234",
		timestamp,
		types.StatusOnTime,
	)
	require.ErrorAs(t, err, &authErr)
}

func TestOperationalToggle(t *testing.T) {
	l := newTestLedger(t)
	operational, err := l.IsOperational()
	require.NoError(t, err)
	assert.True(t, operational)
	// Only authorized callers may toggle
	var authErr *types.AuthorizationError
	err = l.SetOperationalStatus(addr(99), false)
	require.ErrorAs(t, err, &authErr)
	// The owner may pause the ledger
	require.NoError(t, l.SetOperationalStatus(testOwner, false))
	operational, err = l.IsOperational()
	require.NoError(t, err)
	assert.False(t, operational)
	// Mutating operations are rejected while paused
	var stateErr *types.OperationalStateError
	err = l.FundAirline(testFirstAirline, types.MinAirlineFunding)
	require.ErrorAs(t, err, &stateErr)
	// Reads still work
	balance, err := l.AirlineBalance(testFirstAirline)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(0), balance)
	// Requesting the current value is rejected
	err = l.SetOperationalStatus(testOwner, false)
	require.ErrorAs(t, err, &stateErr)
	// Resuming restores normal operation
	require.NoError(t, l.SetOperationalStatus(testOwner, true))
	require.NoError(t, l.FundAirline(testFirstAirline, types.MinAirlineFunding))
}

func TestAuthorizedCallers(t *testing.T) {
	l := newTestLedger(t)
	delegate := addr(60)
	// Authorization is owner only
	var authErr *types.AuthorizationError
	err := l.AuthorizeCaller(delegate, delegate)
	require.ErrorAs(t, err, &authErr)
	require.NoError(t, l.AuthorizeCaller(testOwner, delegate))
	// An authorized delegate may toggle the operational flag
	require.NoError(t, l.SetOperationalStatus(delegate, false))
	require.NoError(t, l.SetOperationalStatus(delegate, true))
	require.NoError(t, l.DeauthorizeCaller(testOwner, delegate))
	err = l.SetOperationalStatus(delegate, false)
	require.ErrorAs(t, err, &authErr)
}

func TestEventBusPublication(t *testing.T) {
	l := newTestLedger(t)
	_, fundedCh := l.EventBus().Subscribe(event.AirlineFundedEventType)
	require.NoError(t, l.FundAirline(testFirstAirline, types.MinAirlineFunding))
	select {
	case evt := <-fundedCh:
		fundedEvt, ok := evt.Data.(event.AirlineFundedEvent)
		require.True(t, ok)
		assert.Equal(t, testFirstAirline, fundedEvt.Airline)
		assert.Equal(t, types.MinAirlineFunding, fundedEvt.Amount)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventLogReplay(t *testing.T) {
	l := fundedTestLedger(t)
	timestamp := time.Now().Unix()
	_, err := l.RegisterFlight(testFirstAirline, "FS1234", timestamp)
	require.NoError(t, err)
	passenger := addr(50)
	require.NoError(
		t,
		l.BuyInsurance(
			passenger,
			testFirstAirline,
			"FS1234",
			timestamp,
			types.MaxInsurancePremium,
		),
	)
	var seqs []uint64
	var eventTypes []event.EventType
	err = l.ReplayEvents(0, func(seq uint64, evt event.Event) error {
		seqs = append(seqs, seq)
		eventTypes = append(eventTypes, evt.Type)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, seqs)
	assert.Equal(
		t,
		[]event.EventType{
			event.AirlineFundedEventType,
			event.InsurancePurchasedEventType,
		},
		eventTypes,
	)
	// Decoded payloads carry the original values
	err = l.ReplayEvents(1, func(seq uint64, evt event.Event) error {
		purchased, ok := evt.Data.(*event.InsurancePurchasedEvent)
		require.True(t, ok)
		assert.Equal(t, passenger, purchased.Holder)
		assert.Equal(t, "FS1234", purchased.FlightNumber)
		return nil
	})
	require.NoError(t, err)
}

func TestFailedOperationEmitsNoEvents(t *testing.T) {
	l := newTestLedger(t)
	err := l.FundAirline(testFirstAirline, types.MinAirlineFunding-1)
	require.Error(t, err)
	count := 0
	err = l.ReplayEvents(0, func(uint64, event.Event) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
