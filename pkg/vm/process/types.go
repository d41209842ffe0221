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
	"context"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
)

// WaitRegister channel
type WaitRegister struct {
	Ctx context.Context
	Ch  chan *batch.Batch
}

// Register used in execution pipeline and shared with all operators of the same pipeline.
type Register struct {
	// MergeReceivers, receives result of multi previous operators from other pipelines
	// e.g. join operator: [0] is the left input and [1] the right input.
	MergeReceivers []*WaitRegister
}

// Limitation specifies the maximum resources that can be used in one query.
type Limitation struct {
	// BatchRows is the max number of rows in one output batch.
	BatchRows int64
}

// Process contains context used in query execution
// one or more pipeline will be generated for one query,
// and one pipeline has one process instance.
type Process struct {
	// Id, query id.
	Id  string
	Reg Register
	Lim Limitation

	analInfo *AnalyzeInfo

	Ctx    context.Context
	Cancel context.CancelFunc
}

// AnalyzeInfo collects the runtime statistics of one pipeline.
type AnalyzeInfo struct {
	InputRows    int64
	OutputRows   int64
	TimeConsumed int64
	WaitTimeNs   int64
	MemoryRows   int64
}

type Analyze interface {
	Start()
	Stop()
	Alloc(int64)
	Input(*batch.Batch)
	Output(*batch.Batch)
	WaitStop(start int64)
}
