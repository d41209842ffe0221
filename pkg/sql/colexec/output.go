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

package colexec

import (
	"github.com/matrixorigin/mojoin/pkg/container/row"
)

// OutputBuilder assembles result rows of a join: all left values then all
// right values, with a missing side replaced by typed NULLs.
type OutputBuilder struct {
	left   *row.Schema
	right  *row.Schema
	result *row.Schema

	leftNull  row.Row
	rightNull row.Row
}

func NewOutputBuilder(left, right *row.Schema) *OutputBuilder {
	return &OutputBuilder{
		left:      left,
		right:     right,
		result:    row.ConcatSchema(left, right),
		leftNull:  row.NullRow(left),
		rightNull: row.NullRow(right),
	}
}

// Schema is the schema of the rows Build returns.
func (ob *OutputBuilder) Schema() *row.Schema {
	return ob.result
}

// Build combines l and r into one output row. A nil side contributes one
// NULL per field of its schema. Both sides nil is allowed and gives an
// all-NULL row, callers never ask for one.
func (ob *OutputBuilder) Build(l, r *row.Row) row.Row {
	lr, rr := ob.leftNull, ob.rightNull
	if l != nil {
		lr = *l
	}
	if r != nil {
		rr = *r
	}
	return row.Concat(lr, rr)
}
