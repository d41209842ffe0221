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

package process

import (
	"sync/atomic"
	"time"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
)

type analyze struct {
	start    time.Time
	analInfo *AnalyzeInfo
}

func (a *analyze) Start() {
	a.start = time.Now()
}

func (a *analyze) Stop() {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.TimeConsumed, int64(time.Since(a.start)))
	}
}

// Alloc records rows held in operator state, negative when released.
func (a *analyze) Alloc(rows int64) {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.MemoryRows, rows)
	}
}

func (a *analyze) Input(bat *batch.Batch) {
	if a.analInfo != nil && bat != nil {
		atomic.AddInt64(&a.analInfo.InputRows, int64(bat.RowCount()))
	}
}

func (a *analyze) Output(bat *batch.Batch) {
	if a.analInfo != nil && bat != nil {
		atomic.AddInt64(&a.analInfo.OutputRows, int64(bat.RowCount()))
	}
}

// WaitStop adds the time spent blocked on a channel since start (unix nanos).
func (a *analyze) WaitStop(start int64) {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.WaitTimeNs, time.Now().UnixNano()-start)
	}
}

func (a *AnalyzeInfo) snapshot() AnalyzeInfo {
	if a == nil {
		return AnalyzeInfo{}
	}
	return AnalyzeInfo{
		InputRows:    atomic.LoadInt64(&a.InputRows),
		OutputRows:   atomic.LoadInt64(&a.OutputRows),
		TimeConsumed: atomic.LoadInt64(&a.TimeConsumed),
		WaitTimeNs:   atomic.LoadInt64(&a.WaitTimeNs),
		MemoryRows:   atomic.LoadInt64(&a.MemoryRows),
	}
}
