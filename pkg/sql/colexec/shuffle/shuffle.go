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
	"bytes"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
	v2 "github.com/matrixorigin/mojoin/pkg/util/metric/v2"
	"github.com/matrixorigin/mojoin/pkg/vm"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

const opName = "shuffle"

var sideNames = [...]string{"left", "right"}

func (arg *Argument) String(buf *bytes.Buffer) {
	buf.WriteString(opName)
	fmt.Fprintf(buf, ": %s input by %v to %d units", sideNames[arg.Side&1], arg.KeyCols, len(arg.Regs))
}

func (arg *Argument) Prepare(proc *process.Process) error {
	if len(arg.Regs) == 0 {
		return moerr.NewInternalError(proc.Ctx, "shuffle without receivers")
	}
	if len(proc.Reg.MergeReceivers) != 1 {
		return moerr.NewInternalError(proc.Ctx, "shuffle needs 1 input, got %d", len(proc.Reg.MergeReceivers))
	}
	arg.ctr = new(container)
	arg.ctr.sels = make([]*roaring.Bitmap, len(arg.Regs))
	for i := range arg.ctr.sels {
		arg.ctr.sels[i] = roaring.New()
	}
	if arg.Side == 0 {
		arg.ctr.rows = v2.JoinLeftInputRowsCounter
	} else {
		arg.ctr.rows = v2.JoinRightInputRowsCounter
	}
	return nil
}

// Call moves one input batch to the units. It stops after the end of the
// input has been forwarded.
func (arg *Argument) Call(proc *process.Process) (vm.CallResult, error) {
	if err, isCancel := vm.CancelCheck(proc); isCancel {
		return vm.CancelResult, moerr.ConvertGoError(proc.Ctx, err)
	}
	ctr := arg.ctr
	result := vm.NewCallResult()
	if ctr.ending {
		result.Status = vm.ExecStop
		return result, nil
	}

	anal := proc.GetAnalyze()
	bat, err := receive(proc, anal)
	if err != nil {
		return result, err
	}
	anal.Start()
	defer anal.Stop()

	switch {
	case bat == nil:
		ctr.ending = true
		result.Status = vm.ExecStop
		return result, arg.sendToAll(proc, nil)
	case bat.IsWatermark():
		return result, arg.sendToAll(proc, bat)
	case bat.IsEmpty():
		return result, nil
	}

	anal.Input(bat)
	ctr.rows.Add(float64(bat.RowCount()))
	if err := arg.shuffle(proc, bat); err != nil {
		return result, err
	}
	return result, nil
}

func receive(proc *process.Process, anal process.Analyze) (*batch.Batch, error) {
	reg := proc.Reg.MergeReceivers[0]
	start := time.Now().UnixNano()
	defer anal.WaitStop(start)
	select {
	case <-proc.Ctx.Done():
		return nil, moerr.ConvertGoError(proc.Ctx, proc.Ctx.Err())
	case bat, ok := <-reg.Ch:
		if !ok {
			return nil, nil
		}
		return bat, nil
	}
}

func (arg *Argument) shuffle(proc *process.Process, bat *batch.Batch) error {
	ctr := arg.ctr
	n := uint64(len(arg.Regs))
	for i, r := range bat.Rows {
		if arg.Schema != nil && !arg.Schema.Conforms(r) {
			return moerr.NewInvalidInput(proc.Ctx, "row %s does not match %s", r, arg.Schema)
		}
		key := colexec.ExtractKey(r, arg.KeyCols)
		var unit uint64
		if key.HasNull() {
			unit = ctr.nullCnt % n
			ctr.nullCnt++
		} else {
			unit = colexec.KeyHash(key) % n
		}
		ctr.sels[unit].Add(uint32(i))
	}

	for i, sels := range ctr.sels {
		if sels.IsEmpty() {
			continue
		}
		var out *batch.Batch
		if sels.GetCardinality() == uint64(bat.RowCount()) {
			out = bat
		} else {
			out = bat.Shuffle(sels.ToArray())
		}
		sels.Clear()
		if err := sendTo(proc, arg.Regs[i], out); err != nil {
			return err
		}
	}
	return nil
}

func (arg *Argument) sendToAll(proc *process.Process, bat *batch.Batch) error {
	for _, reg := range arg.Regs {
		if err := sendTo(proc, reg, bat); err != nil {
			return err
		}
	}
	return nil
}

func sendTo(proc *process.Process, reg *process.WaitRegister, bat *batch.Batch) error {
	select {
	case <-proc.Ctx.Done():
		return moerr.ConvertGoError(proc.Ctx, proc.Ctx.Err())
	case <-reg.Ctx.Done():
		return moerr.NewQueryInterrupted(proc.Ctx)
	case reg.Ch <- bat:
		return nil
	}
}
