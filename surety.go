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

package surety

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/flightsurety/surety/accesscontrol"
	"github.com/flightsurety/surety/airline"
	"github.com/flightsurety/surety/database"
	"github.com/flightsurety/surety/event"
	"github.com/flightsurety/surety/flight"
	"github.com/flightsurety/surety/insurance"
	"github.com/flightsurety/surety/oracle"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ledger is the authoritative record for the flight-delay insurance scheme.
// It admits airlines, registers insurable flights, sells policies, collects
// oracle reports, and settles payouts. All operations are linearized under
// a single lock and each runs in one database transaction
type Ledger struct {
	config        Config
	db            *database.Database
	eventBus      *event.EventBus
	accessControl *accesscontrol.AccessControl
	airlines      *airline.Registry
	flights       *flight.Registry
	oracles       *oracle.Coordinator
	insurances    *insurance.Ledger
	metrics       *ledgerMetrics
	metricsServer *http.Server
	shutdownFuncs []func(context.Context) error
	pendingEvents []event.Event
	done          chan struct{}
	mutex         sync.Mutex
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Ledger, error) {
	l := &Ledger{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
	}
	if err := l.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Load database
	db, err := database.New(
		&database.Config{
			DataDir:      cfg.dataDir,
			Logger:       cfg.logger,
			PromRegistry: cfg.promRegistry,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	l.db = db
	l.accessControl = accesscontrol.New(db, cfg.logger)
	l.airlines = airline.New(db, cfg.logger)
	l.flights = flight.New(db, cfg.logger)
	seed := cfg.randSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec
	}
	l.oracles = oracle.New(db, cfg.logger, seed)
	l.insurances = insurance.New(db, cfg.logger)
	l.metrics = newLedgerMetrics(cfg.promRegistry)
	if err := l.bootstrap(); err != nil {
		l.db.Close()
		return nil, fmt.Errorf("failed to bootstrap ledger: %w", err)
	}
	return l, nil
}

// bootstrap seeds the ledger state and the first airline on first startup.
// A no-op when the database already carries ledger state
func (l *Ledger) bootstrap() error {
	txn := l.db.Transaction(true)
	return txn.Do(func(txn *database.Txn) error {
		created, err := l.accessControl.Bootstrap(txn, l.config.owner)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return l.airlines.Bootstrap(
			txn,
			l.config.firstAirline,
			l.config.firstAirlineName,
		)
	})
}

// Run starts the optional metrics listener and tracing, then blocks until
// Stop is called
func (l *Ledger) Run() error {
	// Configure tracing
	if l.config.tracing {
		if err := l.setupTracing(); err != nil {
			return err
		}
	}
	// Start metrics listener
	if l.config.metricsAddress != "" {
		if err := l.startMetricsListener(); err != nil {
			return err
		}
	}
	// Wait for shutdown signal
	<-l.done
	return nil
}

func (l *Ledger) startMetricsListener() error {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	l.metricsServer = &http.Server{
		Addr:         l.config.metricsAddress,
		Handler:      metricsMux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	l.config.logger.Info(
		fmt.Sprintf(
			"starting listener for prometheus metrics connections: %s",
			l.config.metricsAddress,
		),
		"component", "metrics",
	)
	go func() {
		if err := l.metricsServer.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				l.config.logger.Error(
					fmt.Sprintf("failed to start metrics listener: %s", err),
					"component", "metrics",
				)
			}
		}
	}()
	return nil
}

func (l *Ledger) Stop() error {
	var err error
	l.shutdownOnce.Do(func() {
		err = l.shutdown()
	})
	return err
}

func (l *Ledger) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if l.config.shutdownTimeout > 0 {
		shutdownTimeout = l.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	l.config.logger.Debug("starting graceful shutdown")

	if l.metricsServer != nil {
		if stopErr := l.metricsServer.Shutdown(ctx); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("metrics listener shutdown: %w", stopErr),
			)
		}
	}

	// Call registered shutdown functions
	for _, fn := range l.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	l.shutdownFuncs = nil

	if l.eventBus != nil {
		l.eventBus.Stop()
	}

	if l.db != nil {
		if closeErr := l.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	l.config.logger.Debug("graceful shutdown complete")
	close(l.done)
	return err
}

// EventBus returns the ledger's event bus for external subscribers
func (l *Ledger) EventBus() *event.EventBus {
	return l.eventBus
}

// runOp executes fn in a single database transaction under the operation
// lock. Events recorded during fn are published to the event bus only after
// the transaction commits
func (l *Ledger) runOp(
	op string,
	readWrite bool,
	fn func(txn *database.Txn) error,
) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.pendingEvents = l.pendingEvents[:0]
	txn := l.db.Transaction(readWrite)
	err := txn.Do(fn)
	if l.metrics != nil {
		l.metrics.operationsTotal.WithLabelValues(op).Inc()
		if err != nil {
			l.metrics.operationFailures.WithLabelValues(op).Inc()
		}
	}
	if err != nil {
		return err
	}
	for _, evt := range l.pendingEvents {
		l.eventBus.Publish(evt.Type, evt)
	}
	return nil
}

// storedEvent is the envelope format for event log records
type storedEvent struct {
	Type      event.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// recordEvent appends an event to the durable event log within the current
// transaction and queues it for post-commit publication
func (l *Ledger) recordEvent(
	txn *database.Txn,
	eventType event.EventType,
	data any,
) error {
	evt := event.NewEvent(eventType, data)
	tmpData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(
		storedEvent{
			Type:      eventType,
			Timestamp: evt.Timestamp,
			Data:      tmpData,
		},
	)
	if err != nil {
		return err
	}
	if _, err := l.db.AppendEvent(txn, payload); err != nil {
		return err
	}
	l.pendingEvents = append(l.pendingEvents, evt)
	return nil
}

// ReplayEvents reads the durable event log in sequence order starting at
// fromSeq, decoding each record into its concrete event type. Returning an
// error from the callback stops iteration
func (l *Ledger) ReplayEvents(
	fromSeq uint64,
	fn func(seq uint64, evt event.Event) error,
) error {
	return l.db.IterateEvents(
		fromSeq,
		func(seq uint64, payload []byte) error {
			var tmpStored storedEvent
			if err := json.Unmarshal(payload, &tmpStored); err != nil {
				return err
			}
			data, err := event.DecodeEventData(tmpStored.Type, tmpStored.Data)
			if err != nil {
				return err
			}
			return fn(
				seq,
				event.Event{
					Type:      tmpStored.Type,
					Timestamp: tmpStored.Timestamp,
					Data:      data,
				},
			)
		},
	)
}
