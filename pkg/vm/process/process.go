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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/logutil"
)

// New creates a new Process.
// A process stores the execution context. Errors raised under its context
// name the query id.
func New(ctx context.Context, lim Limitation) *Process {
	id := uuid.New().String()
	ctx = moerr.AttachDetail(logutil.WithQuery(ctx, id), "query "+id)
	ctx, cancel := context.WithCancel(ctx)
	return &Process{
		Id:       id,
		Lim:      lim,
		Ctx:      ctx,
		Cancel:   cancel,
		analInfo: new(AnalyzeInfo),
	}
}

// NewFromProc create a new Process based on another process.
// The child shares the query id and limits, its context is a child of ctx.
func NewFromProc(p *Process, ctx context.Context, regNumber int) *Process {
	proc := &Process{
		Id:       p.Id,
		Lim:      p.Lim,
		analInfo: new(AnalyzeInfo),
	}
	proc.Ctx, proc.Cancel = context.WithCancel(ctx)
	proc.Reg.MergeReceivers = make([]*WaitRegister, regNumber)
	for i := 0; i < regNumber; i++ {
		proc.Reg.MergeReceivers[i] = &WaitRegister{
			Ctx: proc.Ctx,
			Ch:  make(chan *batch.Batch, 1),
		}
	}
	return proc
}

func (proc *Process) QueryId() string {
	return proc.Id
}

func (proc *Process) GetLim() Limitation {
	return proc.Lim
}

func (proc *Process) GetAnalyze() Analyze {
	return &analyze{analInfo: proc.analInfo}
}

func (proc *Process) AnalyzeInfo() AnalyzeInfo {
	return proc.analInfo.snapshot()
}

func (proc *Process) Debug(msg string, fields ...zap.Field) {
	logutil.Ctx(proc.Ctx).WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}
