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

package cogroup

import (
	"math"

	"github.com/axiomhq/hyperloglog"
	"github.com/google/btree"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
	v2 "github.com/matrixorigin/mojoin/pkg/util/metric/v2"
)

const btreeDegree = 16

func NewAssembler(leftKeys, rightKeys []int32) *Assembler {
	return &Assembler{
		leftKeys:   leftKeys,
		rightKeys:  rightKeys,
		windows:    btree.New(btreeDegree),
		lookup:     make(map[batch.Window]*Window),
		watermarks: [2]int64{math.MinInt64, math.MinInt64},
		keys:       hyperloglog.New(),
	}
}

// Add files the rows of a data batch from side under their window and key.
// Rows of a window that already closed are dropped, the count of dropped
// rows is returned.
func (a *Assembler) Add(side Side, bat *batch.Batch) int {
	if bat == nil || bat.IsWatermark() || len(bat.Rows) == 0 {
		return 0
	}
	if bat.Window.End <= a.lowWatermark() {
		v2.JoinLateRowsCounter.Add(float64(len(bat.Rows)))
		return len(bat.Rows)
	}

	w, ok := a.lookup[bat.Window]
	if !ok {
		w = &Window{Window: bat.Window, index: make(map[string]int)}
		a.lookup[bat.Window] = w
		a.windows.ReplaceOrInsert(w)
	}

	keyCols := a.leftKeys
	if side == Right {
		keyCols = a.rightKeys
	}
	for _, r := range bat.Rows {
		key := colexec.ExtractKey(r, keyCols)
		var bkt *Bucket
		if key.HasNull() {
			bkt = w.nullBucket(side, key)
		} else {
			a.keyBuf = key.AppendEncode(a.keyBuf[:0])
			a.keys.Insert(a.keyBuf)
			idx, ok := w.index[string(a.keyBuf)]
			if !ok {
				idx = len(w.Buckets)
				w.index[string(a.keyBuf)] = idx
				w.Buckets = append(w.Buckets, &Bucket{Key: key})
			}
			bkt = w.Buckets[idx]
		}
		if side == Left {
			bkt.Left = append(bkt.Left, r)
		} else {
			bkt.Right = append(bkt.Right, r)
		}
	}
	w.rows += len(bat.Rows)
	a.rows += int64(len(bat.Rows))
	return 0
}

func (w *Window) nullBucket(side Side, key colexec.JoinKey) *Bucket {
	if side == Left {
		if w.nullLeft == nil {
			w.nullLeft = &Bucket{Key: key}
			w.Buckets = append(w.Buckets, w.nullLeft)
		}
		return w.nullLeft
	}
	if w.nullRight == nil {
		w.nullRight = &Bucket{Key: key}
		w.Buckets = append(w.Buckets, w.nullRight)
	}
	return w.nullRight
}

// Advance moves the watermark of side forward and returns the windows that
// are complete on both sides, in (End, Start) order. They are removed from
// the assembler. A watermark lower than a previous one is ignored.
func (a *Assembler) Advance(side Side, watermark int64) []*Window {
	if watermark > a.watermarks[side] {
		a.watermarks[side] = watermark
	}
	return a.closeWindows()
}

// Finish marks side as exhausted. Once both sides are, every window closes.
func (a *Assembler) Finish(side Side) []*Window {
	return a.Advance(side, math.MaxInt64)
}

// Finished reports whether both sides are exhausted.
func (a *Assembler) Finished() bool {
	return a.watermarks[Left] == math.MaxInt64 && a.watermarks[Right] == math.MaxInt64
}

func (a *Assembler) lowWatermark() int64 {
	return min(a.watermarks[Left], a.watermarks[Right])
}

func (a *Assembler) closeWindows() []*Window {
	low := a.lowWatermark()
	finished := a.Finished()
	var closed []*Window
	for a.windows.Len() > 0 {
		w := a.windows.Min().(*Window)
		if !finished && w.End > low {
			break
		}
		a.windows.DeleteMin()
		delete(a.lookup, w.Window)
		a.rows -= int64(w.rows)
		w.index = nil
		for _, bkt := range w.Buckets {
			v2.JoinBucketRowsHistogram.Observe(float64(bkt.Len()))
		}
		v2.JoinWindowClosedCounter.Inc()
		closed = append(closed, w)
	}
	return closed
}

// Rows is the number of rows currently held.
func (a *Assembler) Rows() int64 {
	return a.rows
}

// Windows is the number of open windows.
func (a *Assembler) Windows() int {
	return a.windows.Len()
}

// DistinctKeys estimates how many distinct non-NULL keys were added.
func (a *Assembler) DistinctKeys() uint64 {
	return a.keys.Estimate()
}

// Free drops every open window.
func (a *Assembler) Free() {
	a.windows.Clear(false)
	a.lookup = make(map[batch.Window]*Window)
	a.rows = 0
}
