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
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/flightsurety/surety/types"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	dataDir          string
	owner            types.Address
	firstAirline     types.Address
	firstAirlineName string
	metricsAddress   string
	randSeed         uint64
	tracing          bool
	tracingStdout    bool
	shutdownTimeout  time.Duration
}

func (l *Ledger) configValidate() error {
	if l.config.owner.IsZero() {
		return errors.New("no ledger owner defined")
	}
	if l.config.firstAirline.IsZero() {
		return errors.New("no first airline defined")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the Ledger config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new surety config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithOwner specifies the ledger owner address. Required
func WithOwner(owner types.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.owner = owner
	}
}

// WithFirstAirline specifies the first airline seeded at bootstrap. The
// airline is registered immediately but must fund itself to become
// validated. Required
func WithFirstAirline(addr types.Address, name string) ConfigOptionFunc {
	return func(c *Config) {
		c.firstAirline = addr
		c.firstAirlineName = name
	}
}

// WithRandSeed specifies the seed for oracle index assignment. The default
// seed is derived from the current time
func WithRandSeed(seed uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.randSeed = seed
	}
}

// WithMetricsAddress specifies the listen address for the Prometheus
// metrics server. An empty string disables the server. The default is
// empty (disabled)
func WithMetricsAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.metricsAddress = addr
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
