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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	operationsTotal    *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	airlinesValidated  prometheus.Gauge
	openOracleRequests prometheus.Gauge
	policiesSold       prometheus.Counter
	payoutsCredited    prometheus.Counter
}

func newLedgerMetrics(promRegistry prometheus.Registerer) *ledgerMetrics {
	if promRegistry == nil {
		return nil
	}
	promautoFactory := promauto.With(promRegistry)
	return &ledgerMetrics{
		operationsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_operations_total",
				Help: "total ledger operations by name",
			},
			[]string{"op"},
		),
		operationFailures: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_operation_failures_total",
				Help: "failed ledger operations by name",
			},
			[]string{"op"},
		),
		airlinesValidated: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "surety_airlines_validated",
				Help: "current number of validated airlines",
			},
		),
		openOracleRequests: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "surety_oracle_requests_open",
				Help: "current number of open oracle requests",
			},
		),
		policiesSold: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "surety_policies_sold_total",
				Help: "total insurance policies sold",
			},
		),
		payoutsCredited: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "surety_payouts_credited_total",
				Help: "total payouts credited to insurees",
			},
		),
	}
}
