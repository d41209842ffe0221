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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mojoin/pkg/container/types"
)

func orderDetails(name string) *Schema {
	return NewSchema(name,
		Field{Name: "order_id", Typ: types.T_int32.ToType()},
		Field{Name: "site_id", Typ: types.T_int32.ToType()},
		Field{Name: "price", Typ: types.T_int32.ToType()},
	)
}

func TestConcatSchema(t *testing.T) {
	res := ConcatSchema(orderDetails("o1"), orderDetails("o2"))
	var names []string
	for _, f := range res.Fields() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"order_id", "site_id", "price", "order_id0", "site_id0", "price0"}, names)
	require.Equal(t, "", res.Name())
}

func TestConcatSchemaSuffixCollision(t *testing.T) {
	left := NewSchema("l",
		Field{Name: "a", Typ: types.T_int64.ToType()},
		Field{Name: "a0", Typ: types.T_int64.ToType()},
	)
	right := NewSchema("r",
		Field{Name: "a", Typ: types.T_varchar.ToType()},
		Field{Name: "a", Typ: types.T_int64.ToType()},
	)
	res := ConcatSchema(left, right)
	require.Equal(t, "a1", res.Field(2).Name)
	require.Equal(t, "a2", res.Field(3).Name)
	require.Equal(t, types.T_varchar, res.Field(2).Typ.Oid)
}

func TestSchemaLookup(t *testing.T) {
	s := orderDetails("o1")
	i, ok := s.FieldIndex("price")
	require.True(t, ok)
	require.Equal(t, 2, i)
	_, ok = s.FieldIndex("missing")
	require.False(t, ok)
	require.Equal(t, "o1(order_id INT, site_id INT, price INT)", s.String())
}

func TestRow(t *testing.T) {
	vals := []types.Value{types.NewInt32(1), types.NewInt32(2), types.Null(types.T_int32)}
	r := New(vals...)
	vals[0] = types.NewInt32(9)
	require.Equal(t, int64(1), r.Value(0).Int64(), "row must not alias its input")
	require.Equal(t, "(1,2,NULL)", r.String())

	s := orderDetails("o1")
	require.True(t, s.Conforms(r))
	require.False(t, s.Conforms(New(types.NewInt32(1))))

	nr := NullRow(s)
	require.Equal(t, "(NULL,NULL,NULL)", nr.String())
	require.Equal(t, types.T_int32, nr.Value(1).Oid())

	joined := Concat(r, nr)
	require.Equal(t, 6, joined.Len())
	require.Equal(t, "(1,2,NULL,NULL,NULL,NULL)", joined.String())
}

func TestRowEqualHash(t *testing.T) {
	a := New(types.NewInt32(1), types.Null(types.T_int32))
	b := New(types.NewInt64(1), types.Null(types.T_int64))
	c := New(types.NewInt32(1), types.NewInt32(0))
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(New(types.NewInt32(1))))
}
