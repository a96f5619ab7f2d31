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

package event

import (
	"encoding/json"
	"fmt"

	"github.com/flightsurety/surety/types"
)

const (
	AirlineRegisteredEventType  EventType = "airline.registered"
	AirlineFundedEventType      EventType = "airline.funded"
	InsurancePurchasedEventType EventType = "insurance.purchased"
	OracleRequestEventType      EventType = "oracle.request"
	OracleReportEventType       EventType = "oracle.report"
	FlightStatusEventType       EventType = "flight.status"
)

// AirlineRegisteredEvent reports a successful admission vote. Votes carries
// the vote count at the time the candidate became registered
type AirlineRegisteredEvent struct {
	Airline types.Address `json:"airline"`
	Votes   int           `json:"votes"`
}

type AirlineFundedEvent struct {
	Airline types.Address `json:"airline"`
	Amount  types.Amount  `json:"amount"`
}

type InsurancePurchasedEvent struct {
	Holder       types.Address `json:"holder"`
	FlightNumber string        `json:"flightNumber"`
	Amount       types.Amount  `json:"amount"`
}

// OracleRequestEvent is the only signal external oracle processes observe
// to know a status fetch is pending. Oracles holding Index are expected to
// respond via SubmitOracleResponse
type OracleRequestEvent struct {
	Index        uint8         `json:"index"`
	Airline      types.Address `json:"airline"`
	FlightNumber string        `json:"flightNumber"`
	Timestamp    int64         `json:"timestamp"`
}

type OracleReportEvent struct {
	Airline      types.Address    `json:"airline"`
	FlightNumber string           `json:"flightNumber"`
	Timestamp    int64            `json:"timestamp"`
	Status       types.StatusCode `json:"status"`
}

// FlightStatusEvent reports a flight reaching its terminal status via
// oracle quorum
type FlightStatusEvent struct {
	Airline      types.Address    `json:"airline"`
	FlightNumber string           `json:"flightNumber"`
	Timestamp    int64            `json:"timestamp"`
	Status       types.StatusCode `json:"status"`
}

// DecodeEventData unmarshals a stored event payload into its concrete type
func DecodeEventData(eventType EventType, data []byte) (any, error) {
	var ret any
	switch eventType {
	case AirlineRegisteredEventType:
		ret = &AirlineRegisteredEvent{}
	case AirlineFundedEventType:
		ret = &AirlineFundedEvent{}
	case InsurancePurchasedEventType:
		ret = &InsurancePurchasedEvent{}
	case OracleRequestEventType:
		ret = &OracleRequestEvent{}
	case OracleReportEventType:
		ret = &OracleReportEvent{}
	case FlightStatusEventType:
		ret = &FlightStatusEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
