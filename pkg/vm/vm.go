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

package vm

import (
	"bytes"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

// String range operators and call each operator's string function to show a pipeline
func String(ops []Operator, buf *bytes.Buffer) {
	for i, op := range ops {
		if i > 0 {
			buf.WriteString(" -> ")
		}
		op.String(buf)
	}
}

// Run prepares op and calls it until it stops, handing every produced
// batch to fill. Panics raised by the operator are converted to errors.
func Run(op Operator, proc *process.Process, fill func(*batch.Batch) error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(proc.Ctx, e)
		}
		op.Free(proc, err != nil, err)
	}()

	if err = op.Prepare(proc); err != nil {
		return err
	}
	for {
		if err, isCancel := CancelCheck(proc); isCancel {
			return moerr.ConvertGoError(proc.Ctx, err)
		}
		result, err := op.Call(proc)
		if err != nil {
			return err
		}
		if result.Batch != nil && !result.Batch.IsEmpty() && fill != nil {
			if err = fill(result.Batch); err != nil {
				return err
			}
		}
		if result.Status == ExecStop {
			return nil
		}
	}
}
