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
	"bytes"
	"strconv"

	"github.com/matrixorigin/mojoin/pkg/container/types"
)

type Field struct {
	Name string
	Typ  types.Type
}

// Schema is an ordered, immutable list of fields. Name is the relation
// name (table or alias) the fields belong to, it may be empty.
type Schema struct {
	name   string
	fields []Field
}

func NewSchema(name string, fields ...Field) *Schema {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Schema{name: name, fields: fs}
}

func (s *Schema) Name() string {
	return s.name
}

func (s *Schema) Len() int {
	return len(s.fields)
}

func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	fs := make([]Field, len(s.fields))
	copy(fs, s.fields)
	return fs
}

// FieldIndex returns the position of the first field called name.
func (s *Schema) FieldIndex(name string) (int, bool) {
	for i, f := range s.fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Conforms reports whether r has one value per field with a matching type.
func (s *Schema) Conforms(r Row) bool {
	if r.Len() != len(s.fields) {
		return false
	}
	for i, f := range s.fields {
		if r.Value(i).Oid() != f.Typ.Oid {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	var buf bytes.Buffer
	buf.WriteString(s.name)
	buf.WriteByte('(')
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(f.Name)
		buf.WriteByte(' ')
		buf.WriteString(f.Typ.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// ConcatSchema returns the schema of a joined row: the left fields followed
// by the right fields. A right field whose name is already taken gets the
// smallest numeric suffix, starting at 0, that makes it unique, so that
// order_id on both sides becomes order_id and order_id0.
func ConcatSchema(left, right *Schema) *Schema {
	fields := make([]Field, 0, len(left.fields)+len(right.fields))
	used := make(map[string]struct{}, cap(fields))
	for _, f := range left.fields {
		fields = append(fields, f)
		used[f.Name] = struct{}{}
	}
	for _, f := range right.fields {
		name := f.Name
		if _, ok := used[name]; ok {
			for i := 0; ; i++ {
				candidate := f.Name + strconv.Itoa(i)
				if _, ok := used[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
		used[name] = struct{}{}
		fields = append(fields, Field{Name: name, Typ: f.Typ})
	}
	return &Schema{fields: fields}
}
