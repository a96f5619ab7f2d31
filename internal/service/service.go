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

package service

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	surety "github.com/flightsurety/surety"
	"github.com/flightsurety/surety/internal/config"
	"github.com/flightsurety/surety/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Run constructs a Ledger from the loaded config and blocks until an
// interrupt or termination signal arrives
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "service")
	owner, err := types.HexToAddress(cfg.Owner)
	if err != nil {
		return fmt.Errorf("invalid owner address: %w", err)
	}
	firstAirline, err := types.HexToAddress(cfg.FirstAirline)
	if err != nil {
		return fmt.Errorf("invalid first airline address: %w", err)
	}

	// Parse shutdown timeout
	shutdownTimeout := 30 * time.Second // Default timeout
	if cfg.ShutdownTimeout != "" {
		var err error
		shutdownTimeout, err = time.ParseDuration(cfg.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown timeout: %w", err)
		}
	}

	l, err := surety.New(
		surety.NewConfig(
			surety.WithLogger(logger),
			surety.WithDatabasePath(cfg.DatabasePath),
			surety.WithOwner(owner),
			surety.WithFirstAirline(firstAirline, cfg.FirstAirlineName),
			surety.WithRandSeed(cfg.RandSeed),
			surety.WithMetricsAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort),
			),
			surety.WithTracing(cfg.Tracing),
			surety.WithTracingStdout(cfg.TracingStdout),
			surety.WithShutdownTimeout(shutdownTimeout),
			// Enable metrics with default prometheus registry
			surety.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		),
	)
	if err != nil {
		return err
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run ledger in goroutine
	errChan := make(chan error, 1)
	go func() {
		err := l.Run()
		select {
		case errChan <- err:
		case <-signalCtx.Done():
		}
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		if err := l.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		if err != nil {
			logger.Error("ledger error", "error", err)
		}
		if stopErr := l.Stop(); stopErr != nil {
			logger.Error("shutdown errors occurred", "error", stopErr)
			if err == nil {
				err = stopErr
			}
		}
		return err
	}
}
