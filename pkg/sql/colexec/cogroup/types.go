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
	"github.com/axiomhq/hyperloglog"
	"github.com/google/btree"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
)

type Side int8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Bucket holds every row of one window that carries Key, split by side.
// A bucket is never empty on both sides. Rows whose key has a NULL are
// gathered in buckets of their own that only ever hold one side.
type Bucket struct {
	Key   colexec.JoinKey
	Left  []row.Row
	Right []row.Row
}

func (b *Bucket) Len() int {
	return len(b.Left) + len(b.Right)
}

// Window is the co-grouped content of one event-time window.
type Window struct {
	batch.Window
	Buckets []*Bucket

	index     map[string]int
	nullLeft  *Bucket
	nullRight *Bucket
	rows      int
}

var _ btree.Item = new(Window)

func (w *Window) Less(than btree.Item) bool {
	return w.Window.Less(than.(*Window).Window)
}

// Rows is the number of rows held by the window.
func (w *Window) Rows() int {
	return w.rows
}

// Assembler groups the rows of both join inputs by window and key. It
// belongs to one join unit and is not safe for concurrent use.
type Assembler struct {
	leftKeys  []int32
	rightKeys []int32

	// windows ordered by (End, Start), lookup finds them by value.
	windows *btree.BTree
	lookup  map[batch.Window]*Window

	watermarks [2]int64
	rows       int64
	keys       *hyperloglog.Sketch

	keyBuf []byte
}
