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

package main

import (
	"context"
	"encoding/csv"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/config"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/logutil"
	"github.com/matrixorigin/mojoin/pkg/sql/compile"
)

// execute compiles the query, then joins its inputs and writes the result
// as csv to w, starting with a header line. Nothing is read when the join
// is rejected.
func execute(ctx context.Context, cfg *config.Config, q *Query, w io.Writer) error {
	ls, err := q.Left.Schema(ctx)
	if err != nil {
		return err
	}
	rs, err := q.Right.Schema(ctx)
	if err != nil {
		return err
	}
	node, err := q.Node(ctx)
	if err != nil {
		return err
	}

	c, err := compile.New(cfg.Join)
	if err != nil {
		return err
	}
	defer c.Release()
	if err = c.Compile(ctx, node, ls, rs); err != nil {
		return err
	}
	logutil.Info("join compiled",
		zap.String("join", c.Spec().String()),
		zap.String("plan", c.String()))

	out := csv.NewWriter(w)
	header := make([]string, 0, c.Spec().Result.Len())
	for _, f := range c.Spec().Result.Fields() {
		header = append(header, f.Name)
	}
	if err = out.Write(header); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	inputs := []*Input{&q.Left, &q.Right}
	schemas := []*row.Schema{ls, rs}
	chans := []chan *batch.Batch{
		make(chan *batch.Batch, cfg.Join.ChannelBufferSize),
		make(chan *batch.Batch, cfg.Join.ChannelBufferSize),
	}
	feedErrs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := feed(ctx, inputs[i], schemas[i], chans[i]); err != nil {
				feedErrs[i] = err
				cancel()
			}
		}(i)
	}

	var rows int
	err = c.Run(ctx, chans[0], chans[1], func(bat *batch.Batch) error {
		record := make([]string, c.Spec().Result.Len())
		for _, r := range bat.Rows {
			for i := range record {
				record[i] = r.Value(i).String()
			}
			if err := out.Write(record); err != nil {
				return err
			}
		}
		rows += bat.RowCount()
		return nil
	})
	cancel()
	wg.Wait()

	// a failed input is the cause of the interrupted run
	for _, e := range feedErrs {
		if e != nil && !moerr.IsMoErrCode(e, moerr.ErrQueryInterrupted) {
			return e
		}
	}
	if err != nil {
		return err
	}
	out.Flush()
	if err = out.Error(); err != nil {
		return err
	}
	logutil.Info("join done", zap.Int("rows", rows))
	return nil
}
