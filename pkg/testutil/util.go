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

package testutil

import (
	"context"
	"fmt"
	"sort"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

func NewProcess() *process.Process {
	return process.New(context.Background(), process.Limitation{BatchRows: 1 << 20})
}

// NewJoinProcess returns a process with a left and a right merge receiver
// of the given capacity.
func NewJoinProcess(capacity int) *process.Process {
	proc := NewProcess()
	proc.Reg.MergeReceivers = []*process.WaitRegister{
		{Ctx: proc.Ctx, Ch: make(chan *batch.Batch, capacity)},
		{Ctx: proc.Ctx, Ch: make(chan *batch.Batch, capacity)},
	}
	return proc
}

// NewSchema builds a schema from alternating names and types.
func NewSchema(name string, cols ...any) *row.Schema {
	fields := make([]row.Field, 0, len(cols)/2)
	for i := 0; i+1 < len(cols); i += 2 {
		fields = append(fields, row.Field{Name: cols[i].(string), Typ: cols[i+1].(types.T).ToType()})
	}
	return row.NewSchema(name, fields...)
}

// OrderSchema is the (order_id, site_id, price) schema of the order tests.
func OrderSchema(name string) *row.Schema {
	return NewSchema(name, "order_id", types.T_int32, "site_id", types.T_int32, "price", types.T_int32)
}

var (
	OrderDetails1 = [][]any{
		{1, 2, 3},
		{2, 3, 3},
		{3, 4, 5},
	}
	OrderDetails2 = [][]any{
		{1, 2, 3},
		{2, 3, 3},
		{3, 4, 5},
	}
	// OrderDetails2Short is OrderDetails2 without its last row.
	OrderDetails2Short = OrderDetails2[:2]
)

// MakeRows converts literal data to rows of s. nil is a NULL, Go ints,
// floats, strings and bools are converted to the field type.
func MakeRows(s *row.Schema, data [][]any) []row.Row {
	rows := make([]row.Row, len(data))
	for i, vals := range data {
		if len(vals) != s.Len() {
			panic(fmt.Sprintf("row %d has %d values, schema %s", i, len(vals), s))
		}
		vs := make([]types.Value, len(vals))
		for j, v := range vals {
			vs[j] = makeValue(s.Field(j).Typ.Oid, v)
		}
		rows[i] = row.New(vs...)
	}
	return rows
}

func makeValue(oid types.T, v any) types.Value {
	if v == nil {
		return types.Null(oid)
	}
	switch oid {
	case types.T_bool:
		return types.NewBool(v.(bool))
	case types.T_int8:
		return types.NewInt8(int8(v.(int)))
	case types.T_int16:
		return types.NewInt16(int16(v.(int)))
	case types.T_int32:
		return types.NewInt32(int32(v.(int)))
	case types.T_int64:
		return types.NewInt64(int64(v.(int)))
	case types.T_float64:
		return types.NewFloat64(v.(float64))
	case types.T_varchar:
		return types.NewVarchar(v.(string))
	}
	panic(fmt.Sprintf("unsupported type %s", oid))
}

// RowStrings renders rows sorted, so that two multisets of rows can be
// compared with require.Equal.
func RowStrings(rows []row.Row) []string {
	ss := make([]string, len(rows))
	for i, r := range rows {
		ss[i] = r.String()
	}
	sort.Strings(ss)
	return ss
}

// Sorted sorts literal row strings.
func Sorted(ss ...string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}

// BatchRows flattens the rows of bats.
func BatchRows(bats []*batch.Batch) []row.Row {
	var rows []row.Row
	for _, bat := range bats {
		if bat == nil || bat.IsWatermark() {
			continue
		}
		rows = append(rows, bat.Rows...)
	}
	return rows
}
