// Copyright 2026 Blink Labs Software
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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	blockHeight  prometheus.Gauge
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.callsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_ledger_calls_total",
			Help: "total number of dispatched ledger calls",
		},
		[]string{"call", "result"},
	)
	m.callDuration = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_ledger_call_duration_seconds",
			Help:    "time taken to apply and commit a ledger call",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100us to ~1.6s
		},
		[]string{"call"},
	)
	m.blockHeight = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "folio_ledger_block_height",
		Help: "current block height",
	})
}
