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

package shuffle

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
	"github.com/matrixorigin/mojoin/pkg/vm"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

const units = 4

func newShuffleProc(input chan *batch.Batch) (*process.Process, []*process.WaitRegister) {
	proc := process.New(context.Background(), process.Limitation{})
	proc.Reg.MergeReceivers = []*process.WaitRegister{{Ctx: proc.Ctx, Ch: input}}
	regs := make([]*process.WaitRegister, units)
	for i := range regs {
		regs[i] = &process.WaitRegister{Ctx: proc.Ctx, Ch: make(chan *batch.Batch, 64)}
	}
	return proc, regs
}

// drain collects what one unit received up to and including the end marker.
func drain(t *testing.T, reg *process.WaitRegister) (rows []row.Row, watermarks []int64) {
	for {
		select {
		case bat := <-reg.Ch:
			if bat == nil {
				return
			}
			if bat.IsWatermark() {
				watermarks = append(watermarks, bat.Watermark())
				continue
			}
			rows = append(rows, bat.Rows...)
		default:
			t.Fatal("unit did not receive the end of stream")
		}
	}
}

func TestShuffleRoutesByKey(t *testing.T) {
	input := make(chan *batch.Batch, 8)
	proc, regs := newShuffleProc(input)
	arg := &Argument{Side: 0, KeyCols: []int32{0}, Regs: regs}

	var rows []row.Row
	for i := 0; i < 100; i++ {
		rows = append(rows, row.New(types.NewInt32(int32(i%10)), types.NewInt32(int32(i))))
	}
	input <- batch.New(batch.GlobalWindow, rows[:50]...)
	input <- batch.NewWatermark(5)
	input <- batch.New(batch.GlobalWindow, rows[50:]...)
	input <- nil

	require.NoError(t, vm.Run(arg, proc, nil))

	owner := make(map[int64]int)
	total := 0
	for i, reg := range regs {
		got, wms := drain(t, reg)
		require.Equal(t, []int64{5}, wms)
		total += len(got)
		for _, r := range got {
			k := r.Value(0).Int64()
			if u, ok := owner[k]; ok {
				require.Equal(t, u, i, "key %d on two units", k)
			}
			owner[k] = i
			require.Equal(t, uint64(i), colexec.KeyHash(colexec.ExtractKey(r, arg.KeyCols))%units)
		}
	}
	require.Equal(t, 100, total)
	require.Equal(t, int64(100), proc.AnalyzeInfo().InputRows)
}

func TestShuffleSpreadsNullKeys(t *testing.T) {
	input := make(chan *batch.Batch, 2)
	proc, regs := newShuffleProc(input)
	arg := &Argument{Side: 1, KeyCols: []int32{0}, Regs: regs}

	var rows []row.Row
	for i := 0; i < 2*units; i++ {
		rows = append(rows, row.New(types.Null(types.T_int32)))
	}
	input <- batch.New(batch.GlobalWindow, rows...)
	close(input)

	require.NoError(t, vm.Run(arg, proc, nil))
	for _, reg := range regs {
		got, _ := drain(t, reg)
		require.Equal(t, 2, len(got))
	}
}

func TestShuffleChecksSchema(t *testing.T) {
	input := make(chan *batch.Batch, 2)
	proc, regs := newShuffleProc(input)
	schema := row.NewSchema("t", row.Field{Name: "a", Typ: types.T_int32.ToType()})
	arg := &Argument{KeyCols: []int32{0}, Regs: regs, Schema: schema}

	input <- batch.New(batch.GlobalWindow, row.New(types.NewVarchar("x")))
	err := vm.Run(arg, proc, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestShuffleCancel(t *testing.T) {
	input := make(chan *batch.Batch)
	proc, regs := newShuffleProc(input)
	arg := &Argument{KeyCols: []int32{0}, Regs: regs}
	proc.Cancel()
	err := vm.Run(arg, proc, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrQueryInterrupted))

	buf := new(bytes.Buffer)
	arg.String(buf)
	require.Equal(t, "shuffle: left input by [0] to 4 units", buf.String())
}
