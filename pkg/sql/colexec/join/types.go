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

package join

import (
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec/cogroup"
	"github.com/matrixorigin/mojoin/pkg/sql/plan"
	"github.com/matrixorigin/mojoin/pkg/vm"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

var _ vm.Operator = new(Argument)

const (
	Build = iota
	End
)

type container struct {
	colexec.ReceiverOperator

	state int

	asm *cogroup.Assembler
	ob  *colexec.OutputBuilder

	// results waiting to be returned, oldest first.
	results []*batch.Batch
	stats   Stats
}

// Argument is one join unit. Merge receiver 0 carries the left input and
// merge receiver 1 the right input, both already shuffled by key.
type Argument struct {
	ctr  *container
	Spec *plan.JoinSpec
	// Unit is the index of this unit among the parallel join units.
	Unit int
}

func (arg *Argument) OpType() vm.OpType {
	return vm.Join
}

func (arg *Argument) Reset(proc *process.Process, pipelineFailed bool, err error) {
	arg.Free(proc, pipelineFailed, err)
}

func (arg *Argument) Free(proc *process.Process, pipelineFailed bool, err error) {
	ctr := arg.ctr
	if ctr == nil {
		return
	}
	if ctr.asm != nil {
		proc.GetAnalyze().Alloc(-ctr.asm.Rows())
		ctr.asm.Free()
	}
	ctr.results = nil
	if pipelineFailed {
		ctr.FreeAllReg()
	}
}

func (arg *Argument) Release() {
	arg.ctr = nil
}
