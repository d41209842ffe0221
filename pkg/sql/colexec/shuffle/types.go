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

package shuffle

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/vm"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

var _ vm.Operator = new(Argument)

type container struct {
	// sels[i] holds the positions of the current batch routed to unit i.
	sels []*roaring.Bitmap
	// nullCnt spreads rows with a NULL key over the units.
	nullCnt uint64
	rows    prometheus.Counter
	ending  bool
}

// Argument routes the rows of one join input to the join units by key
// hash. Watermarks and the end of the stream are sent to every unit.
type Argument struct {
	ctr *container
	// Side is the join input this shuffle serves, 0 for left and 1 for right.
	Side int
	// KeyCols are the key positions of the input schema.
	KeyCols []int32
	// Schema, when set, is checked against every input row.
	Schema *row.Schema
	// Regs are the receivers of the join units, one per unit.
	Regs []*process.WaitRegister
}

func (arg *Argument) OpType() vm.OpType {
	return vm.Shuffle
}

func (arg *Argument) Reset(proc *process.Process, pipelineFailed bool, err error) {
	arg.Free(proc, pipelineFailed, err)
}

func (arg *Argument) Free(proc *process.Process, pipelineFailed bool, err error) {
	if arg.ctr != nil {
		arg.ctr.sels = nil
	}
}

func (arg *Argument) Release() {
	arg.ctr = nil
}
