// Copyright 2021 Matrix Origin
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

package batch

import (
	"math"

	"github.com/matrixorigin/mojoin/pkg/container/row"
)

// Window is the half-open event-time interval [Start, End) a batch was
// assigned to upstream. Rows are only ever joined with rows of the same
// window.
type Window struct {
	Start int64
	End   int64
}

// GlobalWindow holds every row of a bounded input. It only closes once the
// input is exhausted.
var GlobalWindow = Window{Start: math.MinInt64, End: math.MaxInt64}

// Batch represents a part of a relationship: rows assigned to one window,
// or, for a control batch, a watermark.
//
//	(Attrs)  - list of attributes, optional
//	(Window) - window the rows belong to
//	(Rows)   - row data
type Batch struct {
	// Attrs column name list
	Attrs  []string
	Window Window
	Rows   []row.Row

	isWatermark bool
	watermark   int64
}

// EmptyBatch carries no rows; receivers skip it.
var EmptyBatch = &Batch{Window: GlobalWindow}
