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

package batch

import (
	"fmt"
	"math"
	"strings"

	"github.com/matrixorigin/mojoin/pkg/container/row"
)

func New(w Window, rows ...row.Row) *Batch {
	return &Batch{
		Window: w,
		Rows:   rows,
	}
}

func NewWithSize(w Window, n int) *Batch {
	return &Batch{
		Window: w,
		Rows:   make([]row.Row, 0, n),
	}
}

// NewWatermark returns a control batch promising that no more rows of a
// window with End <= ts will follow on the stream it is sent on.
func NewWatermark(ts int64) *Batch {
	return &Batch{
		isWatermark: true,
		watermark:   ts,
	}
}

func (bat *Batch) IsWatermark() bool {
	return bat.isWatermark
}

func (bat *Batch) Watermark() int64 {
	return bat.watermark
}

func (bat *Batch) RowCount() int {
	return len(bat.Rows)
}

// IsEmpty reports a data batch without rows.
func (bat *Batch) IsEmpty() bool {
	return !bat.isWatermark && len(bat.Rows) == 0
}

func (bat *Batch) Append(rows ...row.Row) {
	bat.Rows = append(bat.Rows, rows...)
}

// Shuffle returns a new batch of the same window holding the rows at sels.
func (bat *Batch) Shuffle(sels []uint32) *Batch {
	rbat := NewWithSize(bat.Window, len(sels))
	rbat.Attrs = bat.Attrs
	for _, sel := range sels {
		rbat.Rows = append(rbat.Rows, bat.Rows[sel])
	}
	return rbat
}

func (bat *Batch) String() string {
	if bat.isWatermark {
		return fmt.Sprintf("watermark(%d)", bat.watermark)
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "window%s rows=%d", bat.Window, len(bat.Rows))
	for _, r := range bat.Rows {
		buf.WriteString("\n\t")
		buf.WriteString(r.String())
	}
	return buf.String()
}

// Less orders windows by End, then Start.
func (w Window) Less(o Window) bool {
	if w.End != o.End {
		return w.End < o.End
	}
	return w.Start < o.Start
}

func (w Window) String() string {
	if w == GlobalWindow {
		return "[global]"
	}
	start, end := "-inf", "+inf"
	if w.Start != math.MinInt64 {
		start = fmt.Sprint(w.Start)
	}
	if w.End != math.MaxInt64 {
		end = fmt.Sprint(w.End)
	}
	return fmt.Sprintf("[%s, %s)", start, end)
}
