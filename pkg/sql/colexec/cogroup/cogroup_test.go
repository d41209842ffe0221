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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
	v2 "github.com/matrixorigin/mojoin/pkg/util/metric/v2"
)

func kv(k, v int32) row.Row {
	return row.New(types.NewInt32(k), types.NewInt32(v))
}

func nullKey(v int32) row.Row {
	return row.New(types.Null(types.T_int32), types.NewInt32(v))
}

func TestBoundedCoGroup(t *testing.T) {
	Convey("bounded inputs co-group into one window", t, func() {
		a := NewAssembler([]int32{0}, []int32{0})
		a.Add(Left, batch.New(batch.GlobalWindow, kv(1, 10), kv(2, 20), nullKey(30)))
		a.Add(Right, batch.New(batch.GlobalWindow, kv(2, 200), kv(3, 300), kv(2, 201), nullKey(400)))
		a.Add(Left, batch.New(batch.GlobalWindow, kv(1, 11)))
		So(a.Rows(), ShouldEqual, int64(8))
		So(a.Windows(), ShouldEqual, 1)

		Convey("nothing closes before both sides finish", func() {
			So(a.Advance(Left, 1000), ShouldBeEmpty)
			So(a.Finish(Left), ShouldBeEmpty)
			So(a.Finished(), ShouldBeFalse)
		})

		Convey("every key yields exactly one bucket", func() {
			a.Finish(Left)
			closed := a.Finish(Right)
			So(closed, ShouldHaveLength, 1)
			w := closed[0]
			So(w.Window, ShouldResemble, batch.GlobalWindow)
			So(w.Rows(), ShouldEqual, 8)
			So(a.Rows(), ShouldEqual, int64(0))
			So(a.Windows(), ShouldEqual, 0)

			var keys []string
			for _, bkt := range w.Buckets {
				keys = append(keys, bkt.Key.String())
				So(bkt.Len(), ShouldBeGreaterThan, 0)
			}
			So(keys, ShouldResemble, []string{"[1]", "[2]", "[NULL]", "[3]", "[NULL]"})

			So(w.Buckets[0].Left, ShouldHaveLength, 2)
			So(w.Buckets[0].Right, ShouldBeEmpty)
			So(w.Buckets[1].Left, ShouldHaveLength, 1)
			So(w.Buckets[1].Right, ShouldHaveLength, 2)
			So(w.Buckets[2].Left, ShouldHaveLength, 1)
			So(w.Buckets[2].Right, ShouldBeEmpty)
			So(w.Buckets[4].Left, ShouldBeEmpty)
			So(w.Buckets[4].Right, ShouldHaveLength, 1)

			So(float64(a.DistinctKeys()), ShouldAlmostEqual, 3, 1)
		})
	})
}

func TestWindowedCoGroup(t *testing.T) {
	w1 := batch.Window{Start: 0, End: 10}
	w2 := batch.Window{Start: 10, End: 20}
	a := NewAssembler([]int32{0}, []int32{0})

	a.Add(Left, batch.New(w2, kv(1, 1)))
	a.Add(Left, batch.New(w1, kv(1, 2)))
	a.Add(Right, batch.New(w1, kv(1, 3)))
	a.Add(Right, batch.New(w2, kv(2, 4)))
	require.Equal(t, 2, a.Windows())

	require.Empty(t, a.Advance(Left, 10))
	require.Empty(t, a.Advance(Right, 9))

	closed := a.Advance(Right, 15)
	require.Len(t, closed, 1)
	require.Equal(t, w1, closed[0].Window)
	require.Len(t, closed[0].Buckets, 1)
	require.Len(t, closed[0].Buckets[0].Left, 1)
	require.Len(t, closed[0].Buckets[0].Right, 1)

	// rows of a closed window are late
	before := testutil.ToFloat64(v2.JoinLateRowsCounter)
	require.Equal(t, 2, a.Add(Left, batch.New(w1, kv(1, 5), kv(1, 6))))
	require.Equal(t, before+2, testutil.ToFloat64(v2.JoinLateRowsCounter))

	// a watermark going backwards changes nothing
	require.Empty(t, a.Advance(Left, 3))
	require.Equal(t, 0, a.Add(Left, batch.New(w2, kv(2, 7))))

	closed = a.Advance(Left, 20)
	require.Empty(t, closed)
	closed = a.Finish(Right)
	require.Len(t, closed, 1)
	require.Equal(t, w2, closed[0].Window)
	require.Len(t, closed[0].Buckets, 2)
	require.Equal(t, "[1]", closed[0].Buckets[0].Key.String())
	require.Len(t, closed[0].Buckets[1].Left, 1)
	require.Len(t, closed[0].Buckets[1].Right, 1)
	require.Equal(t, int64(0), a.Rows())
}

func TestWindowsCloseInEndOrder(t *testing.T) {
	a := NewAssembler([]int32{0}, []int32{0})
	for _, w := range []batch.Window{{Start: 20, End: 30}, {Start: 0, End: 30}, {Start: 5, End: 10}} {
		a.Add(Left, batch.New(w, kv(1, 1)))
	}
	a.Finish(Left)
	closed := a.Finish(Right)
	require.Len(t, closed, 3)
	require.Equal(t, batch.Window{Start: 5, End: 10}, closed[0].Window)
	require.Equal(t, batch.Window{Start: 0, End: 30}, closed[1].Window)
	require.Equal(t, batch.Window{Start: 20, End: 30}, closed[2].Window)

	// after both sides finished everything is late
	require.Equal(t, 1, a.Add(Right, batch.New(batch.GlobalWindow, kv(1, 1))))
}

func TestDistinctKeysEstimate(t *testing.T) {
	a := NewAssembler([]int32{0}, []int32{0})
	bat := batch.NewWithSize(batch.GlobalWindow, 10000)
	for i := 0; i < 10000; i++ {
		bat.Append(kv(int32(i), 0))
	}
	a.Add(Left, bat)
	a.Add(Right, bat)
	est := a.DistinctKeys()
	require.InDelta(t, 10000, float64(est), 500)

	a.Free()
	require.Equal(t, 0, a.Windows())
	require.Equal(t, int64(0), a.Rows())
}
