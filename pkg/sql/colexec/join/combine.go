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

package join

import (
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec/cogroup"
	"github.com/matrixorigin/mojoin/pkg/sql/plan"
)

// Combine returns the output rows one bucket contributes under typ.
func Combine(bkt *cogroup.Bucket, typ plan.JoinType, ob *colexec.OutputBuilder) []row.Row {
	rows, _ := AppendCombined(nil, bkt, typ, ob)
	return rows
}

// AppendCombined appends the output rows of bkt to rows. A bucket holding
// rows of both sides only yields their product; the rows of a one-sided
// bucket are padded when typ keeps that side. Unsupported join types
// yield nothing.
func AppendCombined(rows []row.Row, bkt *cogroup.Bucket, typ plan.JoinType, ob *colexec.OutputBuilder) ([]row.Row, Stats) {
	var st Stats
	switch typ {
	case plan.JoinInner, plan.JoinLeft, plan.JoinRight, plan.JoinFull:
	default:
		return rows, st
	}

	switch {
	case len(bkt.Left) > 0 && len(bkt.Right) > 0:
		for i := range bkt.Left {
			for j := range bkt.Right {
				rows = append(rows, ob.Build(&bkt.Left[i], &bkt.Right[j]))
			}
		}
		st.Matched = len(bkt.Left) * len(bkt.Right)
	case len(bkt.Left) > 0:
		if typ == plan.JoinLeft || typ == plan.JoinFull {
			for i := range bkt.Left {
				rows = append(rows, ob.Build(&bkt.Left[i], nil))
			}
			st.LeftPadded = len(bkt.Left)
		}
	case len(bkt.Right) > 0:
		if typ == plan.JoinRight || typ == plan.JoinFull {
			for j := range bkt.Right {
				rows = append(rows, ob.Build(nil, &bkt.Right[j]))
			}
			st.RightPadded = len(bkt.Right)
		}
	}
	return rows, st
}

// Stats counts the rows of each kind a combination produced.
type Stats struct {
	Matched     int
	LeftPadded  int
	RightPadded int
}

func (st *Stats) add(o Stats) {
	st.Matched += o.Matched
	st.LeftPadded += o.LeftPadded
	st.RightPadded += o.RightPadded
}
