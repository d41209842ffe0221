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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
)

func TestBatch(t *testing.T) {
	w := Window{Start: 0, End: 10}
	bat := New(w,
		row.New(types.NewInt64(1)),
		row.New(types.NewInt64(2)),
		row.New(types.NewInt64(3)),
	)
	require.Equal(t, 3, bat.RowCount())
	require.False(t, bat.IsEmpty())
	require.False(t, bat.IsWatermark())

	sub := bat.Shuffle([]uint32{0, 2})
	require.Equal(t, w, sub.Window)
	require.Equal(t, 2, sub.RowCount())
	require.Equal(t, "(3)", sub.Rows[1].String())

	require.True(t, EmptyBatch.IsEmpty())
	require.Contains(t, bat.String(), "window[0, 10) rows=3")
}

func TestWatermark(t *testing.T) {
	bat := NewWatermark(20)
	require.True(t, bat.IsWatermark())
	require.False(t, bat.IsEmpty())
	require.Equal(t, int64(20), bat.Watermark())
	require.Equal(t, "watermark(20)", bat.String())
}

func TestWindowOrder(t *testing.T) {
	a := Window{Start: 0, End: 10}
	b := Window{Start: 5, End: 10}
	c := Window{Start: 0, End: 20}
	require.True(t, a.Less(b))
	require.True(t, b.Less(c))
	require.False(t, GlobalWindow.Less(c))
	require.Equal(t, "[global]", GlobalWindow.String())
}
