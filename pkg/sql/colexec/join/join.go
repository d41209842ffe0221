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
	"bytes"

	"go.uber.org/zap"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec/cogroup"
	v2 "github.com/matrixorigin/mojoin/pkg/util/metric/v2"
	"github.com/matrixorigin/mojoin/pkg/vm"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

const opName = "join"

func (arg *Argument) String(buf *bytes.Buffer) {
	buf.WriteString(opName)
	buf.WriteString(": ")
	if arg.Spec != nil {
		buf.WriteString(arg.Spec.String())
	}
}

func (arg *Argument) Prepare(proc *process.Process) error {
	if arg.Spec == nil {
		return moerr.NewInternalError(proc.Ctx, "join unit %d without join spec", arg.Unit)
	}
	if len(proc.Reg.MergeReceivers) != 2 {
		return moerr.NewInternalError(proc.Ctx, "join unit needs 2 inputs, got %d", len(proc.Reg.MergeReceivers))
	}
	arg.ctr = new(container)
	arg.ctr.InitReceiver(proc)
	arg.ctr.asm = cogroup.NewAssembler(arg.Spec.LeftKeys, arg.Spec.RightKeys)
	arg.ctr.ob = colexec.NewOutputBuilder(arg.Spec.Left, arg.Spec.Right)
	return nil
}

// Call returns the next result batch. Batches are produced when a window
// closes, one per closed window unless it exceeds the batch row limit.
func (arg *Argument) Call(proc *process.Process) (vm.CallResult, error) {
	ctr := arg.ctr
	anal := proc.GetAnalyze()
	result := vm.NewCallResult()
	for {
		if len(ctr.results) > 0 {
			result.Batch = ctr.results[0]
			ctr.results[0] = nil
			ctr.results = ctr.results[1:]
			anal.Output(result.Batch)
			return result, nil
		}

		switch ctr.state {
		case Build:
			bat, idx, end := ctr.ReceiveFromAllRegs(anal)
			if end {
				if err, isCancel := vm.CancelCheck(proc); isCancel {
					return vm.CancelResult, moerr.ConvertGoError(proc.Ctx, err)
				}
				arg.finish(proc)
				continue
			}
			if err := arg.consume(proc, anal, cogroup.Side(idx), bat); err != nil {
				return result, err
			}

		default:
			result.Batch = nil
			result.Status = vm.ExecStop
			return result, nil
		}
	}
}

func (arg *Argument) consume(proc *process.Process, anal process.Analyze, side cogroup.Side, bat *batch.Batch) error {
	ctr := arg.ctr
	anal.Start()
	defer anal.Stop()

	switch {
	case bat == nil:
		arg.emit(proc, ctr.asm.Finish(side))
	case bat.IsWatermark():
		arg.emit(proc, ctr.asm.Advance(side, bat.Watermark()))
	default:
		anal.Input(bat)
		if late := ctr.asm.Add(side, bat); late > 0 {
			proc.Debug("drop late rows",
				zap.Int("unit", arg.Unit),
				zap.Stringer("side", side),
				zap.Stringer("window", bat.Window),
				zap.Int("rows", late))
			return nil
		}
		anal.Alloc(int64(bat.RowCount()))
	}
	if ctr.asm.Finished() {
		arg.finish(proc)
	}
	return nil
}

// finish closes whatever is still open once both inputs ended.
func (arg *Argument) finish(proc *process.Process) {
	ctr := arg.ctr
	if ctr.state == End {
		return
	}
	arg.emit(proc, ctr.asm.Finish(cogroup.Left))
	arg.emit(proc, ctr.asm.Finish(cogroup.Right))
	ctr.state = End
	proc.Debug("join unit done",
		zap.Int("unit", arg.Unit),
		zap.Uint64("distinct-keys", ctr.asm.DistinctKeys()),
		zap.Int("matched", ctr.stats.Matched),
		zap.Int("left-padded", ctr.stats.LeftPadded),
		zap.Int("right-padded", ctr.stats.RightPadded))
}

func (arg *Argument) emit(proc *process.Process, closed []*cogroup.Window) {
	ctr := arg.ctr
	limit := int(proc.Lim.BatchRows)
	for _, w := range closed {
		proc.GetAnalyze().Alloc(-int64(w.Rows()))

		var rows []row.Row
		var st Stats
		for _, bkt := range w.Buckets {
			var s Stats
			rows, s = AppendCombined(rows, bkt, arg.Spec.Type, ctr.ob)
			st.add(s)
		}
		ctr.stats.add(st)
		v2.JoinMatchedRowsCounter.Add(float64(st.Matched))
		v2.JoinPaddedRowsCounter.Add(float64(st.LeftPadded + st.RightPadded))
		v2.JoinLeftPaddedRowsCounter.Add(float64(st.LeftPadded))
		v2.JoinRightPaddedRowsCounter.Add(float64(st.RightPadded))

		for len(rows) > 0 {
			n := len(rows)
			if limit > 0 && n > limit {
				n = limit
			}
			ctr.results = append(ctr.results, batch.New(w.Window, rows[:n:n]...))
			rows = rows[n:]
		}
	}
}
