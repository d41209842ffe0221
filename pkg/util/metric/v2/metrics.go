// Copyright 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package v2

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()
)

func init() {
	initJoinMetrics()
}

func initJoinMetrics() {
	registry.MustRegister(joinInputRowsCounter)
	registry.MustRegister(joinOutputRowsCounter)
	registry.MustRegister(joinPaddedRowsCounter)
	registry.MustRegister(JoinLateRowsCounter)
	registry.MustRegister(JoinWindowClosedCounter)
	registry.MustRegister(joinRejectedCounter)
	registry.MustRegister(JoinBucketRowsHistogram)
}

// GetPrometheusRegistry returns the registry holding every join collector.
func GetPrometheusRegistry() prometheus.Registerer {
	return registry
}

// GetPrometheusGatherer returns the gatherer side of the registry.
func GetPrometheusGatherer() prometheus.Gatherer {
	return registry
}

func getRowsBuckets() []float64 {
	return prometheus.ExponentialBuckets(1, 2, 16)
}
