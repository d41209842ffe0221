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

import "github.com/prometheus/client_golang/prometheus"

var (
	joinInputRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "join",
			Name:      "input_rows_total",
			Help:      "Total number of rows received by join units.",
		}, []string{"side"})
	JoinLeftInputRowsCounter  = joinInputRowsCounter.WithLabelValues("left")
	JoinRightInputRowsCounter = joinInputRowsCounter.WithLabelValues("right")

	joinOutputRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "join",
			Name:      "output_rows_total",
			Help:      "Total number of rows emitted by join units.",
		}, []string{"kind"})
	JoinMatchedRowsCounter = joinOutputRowsCounter.WithLabelValues("matched")
	JoinPaddedRowsCounter  = joinOutputRowsCounter.WithLabelValues("padded")

	joinPaddedRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "join",
			Name:      "padded_rows_total",
			Help:      "Total number of unmatched rows padded with NULLs, by the side that was kept.",
		}, []string{"side"})
	JoinLeftPaddedRowsCounter  = joinPaddedRowsCounter.WithLabelValues("left")
	JoinRightPaddedRowsCounter = joinPaddedRowsCounter.WithLabelValues("right")

	JoinLateRowsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "join",
			Name:      "late_rows_total",
			Help:      "Total number of rows dropped because their window was already closed.",
		})

	JoinWindowClosedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "join",
			Name:      "window_closed_total",
			Help:      "Total number of windows closed and emitted by join units.",
		})

	joinRejectedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "join",
			Name:      "rejected_total",
			Help:      "Total number of join compilations rejected.",
		}, []string{"reason"})
	JoinRejectedShapeCounter  = joinRejectedCounter.WithLabelValues("shape")
	JoinRejectedSchemaCounter = joinRejectedCounter.WithLabelValues("schema")

	JoinBucketRowsHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mo",
			Subsystem: "join",
			Name:      "bucket_rows",
			Help:      "Bucketed histogram of rows held by one co-group bucket.",
			Buckets:   getRowsBuckets(),
		})
)
