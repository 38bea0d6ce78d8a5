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

package sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const sqliteMetricNamePrefix = "database_metadata_"

func (d *MetadataStoreSqlite) registerMetrics() {
	promautoFactory := promauto.With(d.promRegistry)
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: sqliteMetricNamePrefix + "open_connections",
			Help: "number of open sqlite connections",
		},
		func() float64 {
			sqlDb, err := d.DB().DB()
			if err != nil {
				return 0
			}
			return float64(sqlDb.Stats().OpenConnections)
		},
	)
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: sqliteMetricNamePrefix + "wait_count",
			Help: "total number of connections waited for",
		},
		func() float64 {
			sqlDb, err := d.DB().DB()
			if err != nil {
				return 0
			}
			return float64(sqlDb.Stats().WaitCount)
		},
	)
}
