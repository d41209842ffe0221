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

package compile

import (
	"bytes"
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/config"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/logutil"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec/join"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec/shuffle"
	"github.com/matrixorigin/mojoin/pkg/sql/plan"
	"github.com/matrixorigin/mojoin/pkg/vm"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

var newPool = func(size int) (*ants.Pool, error) {
	return ants.NewPool(size)
}

// New returns a Compile running its scopes on a pool sized by cfg.
// Release must be called when the Compile is no longer used.
func New(cfg config.JoinParameters) (*Compile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := newPool(cfg.PoolSize)
	if err != nil {
		return nil, moerr.NewInternalErrorNoCtx("create scope pool: %v", err)
	}
	return &Compile{cfg: cfg, pool: pool}, nil
}

func (c *Compile) Release() {
	if c.pool != nil {
		c.pool.Release()
		c.pool = nil
	}
}

// Compile validates the join. An unsupported join is reported here,
// before any input is read.
func (c *Compile) Compile(ctx context.Context, node *plan.JoinNode, left, right *row.Schema) error {
	spec, err := plan.BuildJoinSpec(ctx, node, left, right)
	if err != nil {
		return err
	}
	c.spec = spec
	return nil
}

func (c *Compile) Spec() *plan.JoinSpec {
	return c.spec
}

// String shows the scopes a run would start.
func (c *Compile) String() string {
	if c.spec == nil {
		return ""
	}
	proc := process.New(context.Background(), process.Limitation{})
	defer proc.Cancel()
	var buf bytes.Buffer
	ss := c.compileScopes(proc, nil, nil)
	for i, s := range ss {
		if i > 0 {
			buf.WriteByte('\n')
		}
		vm.String([]vm.Operator{s.Op}, &buf)
	}
	return buf.String()
}

// Run joins the batches received on left and right and hands the result
// batches to fill, on the calling goroutine. An input ends with a nil
// batch or when its channel is closed. The first error of any scope or of
// fill cancels the whole run and is returned. Runs of one Compile must not
// overlap, they share its pool.
func (c *Compile) Run(ctx context.Context, left, right chan *batch.Batch, fill func(*batch.Batch) error) error {
	if c.spec == nil {
		return moerr.NewInvalidState(ctx, "join is not compiled")
	}
	if c.pool == nil {
		return moerr.NewInvalidState(ctx, "compile already released")
	}
	proc := process.New(ctx, process.Limitation{BatchRows: c.cfg.OutputBatchRows})
	defer proc.Cancel()

	ss := c.compileScopes(proc, left, right)
	out := make(chan *batch.Batch, c.cfg.Parallelism)
	errChan := make(chan error, len(ss))
	var wg sync.WaitGroup
	for _, s := range ss {
		wg.Add(1)
		cs := s
		task := func() {
			defer wg.Done()
			err := cs.Run(func(bat *batch.Batch) error {
				select {
				case <-proc.Ctx.Done():
					return moerr.ConvertGoError(proc.Ctx, proc.Ctx.Err())
				case out <- bat:
					return nil
				}
			})
			if err != nil {
				proc.Cancel()
			}
			errChan <- err
		}
		if err := c.pool.Submit(task); err != nil {
			wg.Done()
			errChan <- moerr.NewInternalError(proc.Ctx, "submit scope: %v", err)
			proc.Cancel()
		}
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	var fillErr error
	for bat := range out {
		if fillErr != nil {
			continue
		}
		if fillErr = fill(bat); fillErr != nil {
			proc.Cancel()
		}
	}

	err := fillErr
	for i := 0; i < len(ss); i++ {
		if e := <-errChan; e != nil && preferError(err, e) {
			err = e
		}
	}
	c.logRun(proc, ss, err)
	return err
}

// preferError reports whether next should replace cur as the error of a
// run: the cancellation seen by the other scopes never hides the error
// that caused it.
func preferError(cur, next error) bool {
	if cur == nil {
		return true
	}
	return moerr.IsMoErrCode(cur, moerr.ErrQueryInterrupted) && !moerr.IsMoErrCode(next, moerr.ErrQueryInterrupted)
}

func (c *Compile) compileScopes(proc *process.Process, left, right chan *batch.Batch) []*Scope {
	n := c.cfg.Parallelism
	units := make([]*Scope, n)
	for i := range units {
		p := process.NewFromProc(proc, proc.Ctx, 0)
		p.Reg.MergeReceivers = []*process.WaitRegister{
			{Ctx: proc.Ctx, Ch: make(chan *batch.Batch, c.cfg.ChannelBufferSize)},
			{Ctx: proc.Ctx, Ch: make(chan *batch.Batch, c.cfg.ChannelBufferSize)},
		}
		units[i] = &Scope{
			Magic: Merge,
			Idx:   i,
			Op:    &join.Argument{Spec: c.spec, Unit: i},
			Proc:  p,
		}
	}

	ss := make([]*Scope, 0, n+2)
	for side, input := range []chan *batch.Batch{left, right} {
		p := process.NewFromProc(proc, proc.Ctx, 0)
		p.Reg.MergeReceivers = []*process.WaitRegister{{Ctx: proc.Ctx, Ch: input}}
		arg := &shuffle.Argument{
			Side:    side,
			KeyCols: c.spec.LeftKeys,
			Schema:  c.spec.Left,
			Regs:    make([]*process.WaitRegister, n),
		}
		if side == 1 {
			arg.KeyCols, arg.Schema = c.spec.RightKeys, c.spec.Right
		}
		for i, u := range units {
			arg.Regs[i] = u.Proc.Reg.MergeReceivers[side]
		}
		ss = append(ss, &Scope{Magic: Normal, Idx: side, Op: arg, Proc: p})
	}
	return append(ss, units...)
}

func (c *Compile) logRun(proc *process.Process, ss []*Scope, err error) {
	var in, out int64
	for _, s := range ss {
		info := s.Proc.AnalyzeInfo()
		if s.Magic == Normal {
			in += info.InputRows
		} else {
			out += info.OutputRows
		}
	}
	proc.Debug("join run finished",
		zap.String("join", c.spec.String()),
		zap.Int("parallelism", c.cfg.Parallelism),
		zap.Int64("input-rows", in),
		zap.Int64("output-rows", out),
		zap.Error(err))
}

// Run drives the scope's operator until it stops.
func (s *Scope) Run(fill func(*batch.Batch) error) error {
	defer s.Proc.Cancel()
	if err := vm.Run(s.Op, s.Proc, fill); err != nil {
		logutil.Ctx(s.Proc.Ctx).Debug("scope failed",
			zap.Int("magic", s.Magic),
			zap.Int("idx", s.Idx),
			zap.Error(err))
		return err
	}
	return nil
}
