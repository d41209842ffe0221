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

package row

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/matrixorigin/mojoin/pkg/container/types"
)

// Row is an immutable record. Rows are passed by value; the backing slice
// is never written after construction.
type Row struct {
	vals []types.Value
}

func New(vals ...types.Value) Row {
	vs := make([]types.Value, len(vals))
	copy(vs, vals)
	return Row{vals: vs}
}

// NullRow returns a row holding one typed NULL per field of s.
func NullRow(s *Schema) Row {
	vs := make([]types.Value, s.Len())
	for i, f := range s.fields {
		vs[i] = types.Null(f.Typ.Oid)
	}
	return Row{vals: vs}
}

// Concat returns the values of l followed by the values of r.
func Concat(l, r Row) Row {
	vs := make([]types.Value, 0, len(l.vals)+len(r.vals))
	vs = append(vs, l.vals...)
	vs = append(vs, r.vals...)
	return Row{vals: vs}
}

func (r Row) Len() int {
	return len(r.vals)
}

func (r Row) Value(i int) types.Value {
	return r.vals[i]
}

// Values returns a copy of the row values.
func (r Row) Values() []types.Value {
	vs := make([]types.Value, len(r.vals))
	copy(vs, r.vals)
	return vs
}

func (r Row) Equal(o Row) bool {
	if len(r.vals) != len(o.vals) {
		return false
	}
	for i := range r.vals {
		if !r.vals[i].Equal(o.vals[i]) {
			return false
		}
	}
	return true
}

// Hash is consistent with Equal.
func (r Row) Hash() uint64 {
	var buf []byte
	for _, v := range r.vals {
		buf = v.AppendKey(buf)
	}
	return xxhash.Sum64(buf)
}

func (r Row) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range r.vals {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
