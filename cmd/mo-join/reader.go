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
	"math"
	"os"

	"github.com/matrixorigin/simdcsv"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
)

// readBatchRows is the number of csv lines grouped into one chunk.
const readBatchRows = 4000

// feed sends the rows of the input file to ch and closes ch at the end of
// the file. A windowed input is followed by a watermark after every chunk,
// so rows older than an earlier chunk's newest window are late.
func feed(ctx context.Context, in *Input, s *row.Schema, ch chan *batch.Batch) error {
	defer close(ch)
	f, err := os.Open(in.Path)
	if err != nil {
		return moerr.NewInvalidInput(ctx, "open input %s: %v", in.Name, err)
	}
	defer f.Close()

	// ReadLoop blocks on every line it hands out and ends with a nil line.
	// lines is closed once it returns, and errc carries its result.
	reader := simdcsv.NewReaderWithOptions(f, ',', '#', true, true)
	lines := make(chan simdcsv.LineOut, readBatchRows)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		errc <- reader.ReadLoop(lines)
	}()
	// unblock the reader when returning early, closing f ends it
	defer func() {
		go func() {
			for range lines {
			}
		}()
	}()

	cr := &chunkReader{in: in, schema: s, ch: ch, skip: in.Header, watermark: math.MinInt64, timeCol: -1}
	if in.WindowSize > 0 {
		cr.timeCol, _ = s.FieldIndex(in.TimeColumn)
	}
	records := make([][]string, 0, readBatchRows)
	for {
		var (
			lo simdcsv.LineOut
			ok bool
		)
		select {
		case <-ctx.Done():
			return moerr.ConvertGoError(ctx, ctx.Err())
		case lo, ok = <-lines:
		}
		if !ok || lo.Line == nil {
			if err := cr.flush(ctx, records); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return moerr.ConvertGoError(ctx, ctx.Err())
			case err := <-errc:
				if err != nil {
					return moerr.NewInvalidInput(ctx, "read input %s: %v", in.Name, err)
				}
			}
			return nil
		}
		records = append(records, lo.Line)
		if len(records) == readBatchRows {
			if err := cr.flush(ctx, records); err != nil {
				return err
			}
			records = records[:0]
		}
	}
}

// chunkReader turns chunks of csv records into batches, one per window.
type chunkReader struct {
	in        *Input
	schema    *row.Schema
	ch        chan *batch.Batch
	timeCol   int
	skip      bool
	line      int
	watermark int64
}

func (cr *chunkReader) flush(ctx context.Context, records [][]string) error {
	var bats []*batch.Batch
	lookup := make(map[batch.Window]*batch.Batch)
	newest := int64(math.MinInt64)
	for _, rec := range records {
		cr.line++
		if cr.skip {
			cr.skip = false
			continue
		}
		r, err := parseRecord(ctx, cr.schema, rec)
		if err != nil {
			return moerr.NewInvalidInput(ctx, "%s:%d: %v", cr.in.Path, cr.line, err)
		}
		w := batch.GlobalWindow
		if cr.timeCol >= 0 {
			v := r.Value(cr.timeCol)
			if v.IsNull() {
				return moerr.NewInvalidInput(ctx, "%s:%d: NULL time", cr.in.Path, cr.line)
			}
			w = tumble(v.Int64(), cr.in.WindowSize)
			newest = max(newest, w.Start)
		}
		bat, ok := lookup[w]
		if !ok {
			bat = batch.NewWithSize(w, len(records))
			lookup[w] = bat
			bats = append(bats, bat)
		}
		bat.Append(r)
	}

	for _, bat := range bats {
		if err := send(ctx, cr.ch, bat); err != nil {
			return err
		}
	}
	if cr.timeCol >= 0 && newest > cr.watermark {
		cr.watermark = newest
		if err := send(ctx, cr.ch, batch.NewWatermark(cr.watermark)); err != nil {
			return err
		}
	}
	return nil
}

func parseRecord(ctx context.Context, s *row.Schema, rec []string) (row.Row, error) {
	if len(rec) != s.Len() {
		return row.Row{}, moerr.NewInvalidInput(ctx, "%d fields, %s has %d columns", len(rec), s.Name(), s.Len())
	}
	vals := make([]types.Value, len(rec))
	for i, field := range rec {
		typ := s.Field(i).Typ
		v, err := types.ParseValue(typ.Oid, field)
		if err != nil {
			return row.Row{}, moerr.NewInvalidInput(ctx, "column %s: '%s' is not a %s", s.Field(i).Name, field, typ)
		}
		vals[i] = v
	}
	return row.New(vals...), nil
}

// tumble returns the window of the given size holding ts.
func tumble(ts, size int64) batch.Window {
	start := ts - ts%size
	if ts < 0 && ts%size != 0 {
		start -= size
	}
	return batch.Window{Start: start, End: start + size}
}

func send(ctx context.Context, ch chan *batch.Batch, bat *batch.Batch) error {
	select {
	case <-ctx.Done():
		return moerr.ConvertGoError(ctx, ctx.Err())
	case ch <- bat:
		return nil
	}
}
