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
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec"
	"github.com/matrixorigin/mojoin/pkg/sql/colexec/cogroup"
	"github.com/matrixorigin/mojoin/pkg/sql/plan"
	"github.com/matrixorigin/mojoin/pkg/testutil"
)

var (
	aSchema = testutil.NewSchema("a", "k1", types.T_int32, "k2", types.T_int64, "v", types.T_varchar)
	bSchema = testutil.NewSchema("b", "v", types.T_varchar, "k2", types.T_int32, "k1", types.T_int64)
	aKeys   = []int32{0, 1}
	bKeys   = []int32{2, 1}
)

func randomRows(r *rand.Rand, s *row.Schema, n int, keyCols []int32) []row.Row {
	rows := make([]row.Row, n)
	for i := range rows {
		vs := make([]types.Value, s.Len())
		for j := range vs {
			oid := s.Field(j).Typ.Oid
			switch {
			case r.Intn(10) == 0:
				vs[j] = types.Null(oid)
			case oid == types.T_varchar:
				vs[j] = types.NewVarchar(string(rune('a' + r.Intn(26))))
			case oid == types.T_int32:
				vs[j] = types.NewInt32(int32(r.Intn(4)))
			default:
				vs[j] = types.NewInt64(int64(r.Intn(4)))
			}
		}
		rows[i] = row.New(vs...)
	}
	return rows
}

// cogroupJoin runs rows through the assembler and the combiner.
func cogroupJoin(typ plan.JoinType, ls, rs *row.Schema, lkeys, rkeys []int32, lrows, rrows []row.Row) []row.Row {
	asm := cogroup.NewAssembler(lkeys, rkeys)
	asm.Add(cogroup.Left, batch.New(batch.GlobalWindow, lrows...))
	asm.Add(cogroup.Right, batch.New(batch.GlobalWindow, rrows...))
	asm.Finish(cogroup.Left)
	ob := colexec.NewOutputBuilder(ls, rs)
	var out []row.Row
	for _, w := range asm.Finish(cogroup.Right) {
		for _, bkt := range w.Buckets {
			out = append(out, Combine(bkt, typ, ob)...)
		}
	}
	return out
}

func keysMatch(l, r row.Row, lkeys, rkeys []int32) bool {
	lk, rk := colexec.ExtractKey(l, lkeys), colexec.ExtractKey(r, rkeys)
	if lk.HasNull() || rk.HasNull() {
		return false
	}
	return bytes.Equal(lk.Encode(), rk.Encode())
}

// nestedLoop is the obvious quadratic join used as the oracle.
func nestedLoop(lrows, rrows []row.Row) (inner, leftOnly, rightOnly []row.Row) {
	ob := colexec.NewOutputBuilder(aSchema, bSchema)
	rightSeen := make([]bool, len(rrows))
	for i := range lrows {
		matched := false
		for j := range rrows {
			if keysMatch(lrows[i], rrows[j], aKeys, bKeys) {
				inner = append(inner, ob.Build(&lrows[i], &rrows[j]))
				matched = true
				rightSeen[j] = true
			}
		}
		if !matched {
			leftOnly = append(leftOnly, ob.Build(&lrows[i], nil))
		}
	}
	for j := range rrows {
		if !rightSeen[j] {
			rightOnly = append(rightOnly, ob.Build(nil, &rrows[j]))
		}
	}
	return
}

func concat(parts ...[]row.Row) []row.Row {
	var out []row.Row
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestJoinTypesAgainstNestedLoop(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		lrows := randomRows(r, aSchema, 30, aKeys)
		rrows := randomRows(r, bSchema, 30, bKeys)
		inner, leftOnly, rightOnly := nestedLoop(lrows, rrows)

		got := cogroupJoin(plan.JoinInner, aSchema, bSchema, aKeys, bKeys, lrows, rrows)
		require.Equal(t, testutil.RowStrings(inner), testutil.RowStrings(got))

		// LEFT adds exactly the unmatched left rows
		got = cogroupJoin(plan.JoinLeft, aSchema, bSchema, aKeys, bKeys, lrows, rrows)
		require.Equal(t, testutil.RowStrings(concat(inner, leftOnly)), testutil.RowStrings(got))

		got = cogroupJoin(plan.JoinRight, aSchema, bSchema, aKeys, bKeys, lrows, rrows)
		require.Equal(t, testutil.RowStrings(concat(inner, rightOnly)), testutil.RowStrings(got))

		// FULL is the disjoint union of the three parts
		got = cogroupJoin(plan.JoinFull, aSchema, bSchema, aKeys, bKeys, lrows, rrows)
		require.Equal(t, len(inner)+len(leftOnly)+len(rightOnly), len(got))
		require.Equal(t, testutil.RowStrings(concat(inner, leftOnly, rightOnly)), testutil.RowStrings(got))
	}
}

func TestInnerCommutative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	lrows := randomRows(r, aSchema, 50, aKeys)
	rrows := randomRows(r, bSchema, 50, bKeys)

	ab := cogroupJoin(plan.JoinInner, aSchema, bSchema, aKeys, bKeys, lrows, rrows)
	ba := cogroupJoin(plan.JoinInner, bSchema, aSchema, bKeys, aKeys, rrows, lrows)
	require.NotEmpty(t, ab)

	swapped := make([]row.Row, len(ba))
	n := bSchema.Len()
	for i, o := range ba {
		vs := o.Values()
		swapped[i] = row.New(append(vs[n:], vs[:n]...)...)
	}
	require.Equal(t, testutil.RowStrings(ab), testutil.RowStrings(swapped))
}

func TestNullKeysNeverMatch(t *testing.T) {
	ls := testutil.NewSchema("l", "k", types.T_int32, "v", types.T_int32)
	rs := testutil.NewSchema("r", "k", types.T_int32, "v", types.T_int32)
	lrows := testutil.MakeRows(ls, [][]any{{nil, 1}, {1, 2}})
	rrows := testutil.MakeRows(rs, [][]any{{nil, 3}, {1, 4}})
	keys := []int32{0}

	got := cogroupJoin(plan.JoinInner, ls, rs, keys, keys, lrows, rrows)
	require.Equal(t, []string{"(1,2,1,4)"}, testutil.RowStrings(got))

	got = cogroupJoin(plan.JoinFull, ls, rs, keys, keys, lrows, rrows)
	require.Equal(t, testutil.Sorted("(1,2,1,4)", "(NULL,1,NULL,NULL)", "(NULL,NULL,NULL,3)"), testutil.RowStrings(got))
}

func TestCombineBucket(t *testing.T) {
	ls := testutil.NewSchema("l", "k", types.T_int32)
	rs := testutil.NewSchema("r", "k", types.T_int32)
	ob := colexec.NewOutputBuilder(ls, rs)
	one := testutil.MakeRows(ls, [][]any{{1}, {1}})
	two := testutil.MakeRows(rs, [][]any{{1}, {1}, {1}})

	both := &cogroup.Bucket{Left: one, Right: two}
	for _, typ := range []plan.JoinType{plan.JoinInner, plan.JoinLeft, plan.JoinRight, plan.JoinFull} {
		rows, st := AppendCombined(nil, both, typ, ob)
		require.Len(t, rows, 6, typ.String())
		require.Equal(t, Stats{Matched: 6}, st)
	}

	leftOnly := &cogroup.Bucket{Left: one}
	require.Empty(t, Combine(leftOnly, plan.JoinInner, ob))
	require.Empty(t, Combine(leftOnly, plan.JoinRight, ob))
	require.Equal(t, []string{"(1,NULL)", "(1,NULL)"}, testutil.RowStrings(Combine(leftOnly, plan.JoinLeft, ob)))
	require.Len(t, Combine(leftOnly, plan.JoinFull, ob), 2)

	rightOnly := &cogroup.Bucket{Right: two}
	require.Empty(t, Combine(rightOnly, plan.JoinLeft, ob))
	rows, st := AppendCombined(nil, rightOnly, plan.JoinFull, ob)
	require.Len(t, rows, 3)
	require.Equal(t, Stats{RightPadded: 3}, st)

	require.Nil(t, Combine(both, plan.JoinCross, ob))
}
