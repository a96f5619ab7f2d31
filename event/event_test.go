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

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/flightsurety/surety/event"
	"github.com/flightsurety/surety/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestEventBusSingleSubscriber(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	select {
	case evt, ok := <-subCh:
		if !ok {
			t.Fatalf("event channel closed unexpectedly")
		}
		switch v := evt.Data.(type) {
		case int:
			if v != testEvtData {
				t.Fatalf("did not get expected event")
			}
		default:
			t.Fatalf(
				"event data was not of expected type, expected int, got %T",
				evt.Data,
			)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	for _, subCh := range []<-chan event.Event{sub1Ch, sub2Ch} {
		select {
		case evt := <-subCh:
			assert.Equal(t, testEvtData, evt.Data)
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event")
		}
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	// The channel is closed on unsubscribe
	select {
	case _, ok := <-subCh:
		assert.False(t, ok)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for channel close")
	}
	// Publishing after unsubscribe does not panic
	eb.Publish(testEvtType, event.NewEvent(testEvtType, nil))
}

func TestEventBusSubscribeFuncStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	var testEvtType event.EventType = "test.event"
	var handled atomic.Int64
	eb := event.NewEventBus(nil, nil)
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		handled.Add(1)
	})
	eb.Publish(testEvtType, event.NewEvent(testEvtType, nil))
	require.Eventually(t, func() bool {
		return handled.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	// Stop closes subscriber channels so handler goroutines exit
	eb.Stop()
}

func TestDecodeEventData(t *testing.T) {
	payload := []byte(
		`{"airline":"0x0000000000000000000000000000000000000002","votes":3}`,
	)
	decoded, err := event.DecodeEventData(
		event.AirlineRegisteredEventType,
		payload,
	)
	require.NoError(t, err)
	registered, ok := decoded.(*event.AirlineRegisteredEvent)
	require.True(t, ok)
	assert.Equal(t, 3, registered.Votes)
	var wantAddr types.Address
	wantAddr[types.AddressSize-1] = 2
	assert.Equal(t, wantAddr, registered.Airline)
	_, err = event.DecodeEventData("bogus.event", payload)
	require.ErrorContains(t, err, "unknown event type")
}
