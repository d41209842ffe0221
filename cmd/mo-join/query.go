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

package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
	"github.com/matrixorigin/mojoin/pkg/sql/plan"
)

// Input is one side of a join read from a csv file.
type Input struct {
	// Name qualifies the columns of the input in the join condition.
	Name string `toml:"name"`
	Path string `toml:"path"`
	// Columns are declared as "name:type", e.g. "order_id:int".
	Columns []string `toml:"columns"`
	// Header skips the first line of the file.
	Header bool `toml:"header"`

	// TimeColumn and WindowSize assign every row to the tumbling window
	// holding its time column. Rows land in the global window without them.
	TimeColumn string `toml:"time-column"`
	WindowSize int64  `toml:"window-size"`
}

// Term is one equality of the join condition. Operands are column
// references written as "rel.col", "col" or "$input.position".
type Term struct {
	Op    string `toml:"op"`
	Left  string `toml:"left"`
	Right string `toml:"right"`
}

type Query struct {
	Kind  string `toml:"kind"`
	Left  Input  `toml:"left"`
	Right Input  `toml:"right"`
	On    []Term `toml:"on"`
}

func loadQuery(path string) (*Query, error) {
	q := &Query{}
	md, err := toml.DecodeFile(path, q)
	if err != nil {
		return nil, moerr.NewBadConfig(context.Background(), "%s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, moerr.NewBadConfig(context.Background(), "%s: unknown key %s", path, undecoded[0])
	}
	return q, nil
}

// Schema declares the columns of the input.
func (in *Input) Schema(ctx context.Context) (*row.Schema, error) {
	if len(in.Columns) == 0 {
		return nil, moerr.NewBadConfig(ctx, "input %s declares no column", in.Name)
	}
	fields := make([]row.Field, 0, len(in.Columns))
	for _, col := range in.Columns {
		name, typ, ok := strings.Cut(col, ":")
		if !ok {
			return nil, moerr.NewBadConfig(ctx, "column '%s' of input %s is not name:type", col, in.Name)
		}
		oid, ok := types.ParseType(typ)
		if !ok {
			return nil, moerr.NewBadConfig(ctx, "column '%s' of input %s has unknown type %s", col, in.Name, typ)
		}
		fields = append(fields, row.Field{Name: strings.TrimSpace(name), Typ: oid.ToType()})
	}
	s := row.NewSchema(in.Name, fields...)
	if in.WindowSize < 0 {
		return nil, moerr.NewBadConfig(ctx, "input %s: window-size %d", in.Name, in.WindowSize)
	}
	if in.WindowSize > 0 {
		i, ok := s.FieldIndex(in.TimeColumn)
		if !ok || s.Field(i).Typ.Oid.Family() != types.FamilyInt {
			return nil, moerr.NewBadConfig(ctx, "input %s: time-column '%s' must be an integer column", in.Name, in.TimeColumn)
		}
	}
	return s, nil
}

// Node turns the query into the planner's join node.
func (q *Query) Node(ctx context.Context) (*plan.JoinNode, error) {
	typ, ok := plan.ParseJoinType(q.Kind)
	if !ok {
		return nil, moerr.NewBadConfig(ctx, "unknown join kind '%s'", q.Kind)
	}
	node := &plan.JoinNode{Type: typ, NumInputs: 2}
	if len(q.On) == 0 {
		return node, nil
	}
	conds := make([]*plan.Expr, 0, len(q.On))
	for _, term := range q.On {
		op, ok := plan.ParseCompareOp(term.Op)
		if !ok {
			return nil, moerr.NewBadConfig(ctx, "unknown operator '%s'", term.Op)
		}
		l, err := parseColRef(ctx, term.Left)
		if err != nil {
			return nil, err
		}
		r, err := parseColRef(ctx, term.Right)
		if err != nil {
			return nil, err
		}
		conds = append(conds, plan.NewCompare(op, l, r))
	}
	if len(conds) == 1 {
		node.On = conds[0]
	} else {
		node.On = plan.NewAnd(conds...)
	}
	return node, nil
}

func parseColRef(ctx context.Context, s string) (*plan.Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, moerr.NewBadConfig(ctx, "empty column reference")
	}
	if strings.HasPrefix(s, "$") {
		rel, col, ok := strings.Cut(s[1:], ".")
		if ok {
			relPos, err1 := strconv.ParseInt(rel, 10, 32)
			colPos, err2 := strconv.ParseInt(col, 10, 32)
			if err1 == nil && err2 == nil {
				return plan.NewPosCol(int32(relPos), int32(colPos)), nil
			}
		}
		return nil, moerr.NewBadConfig(ctx, "bad positional column reference '%s'", s)
	}
	if rel, col, ok := strings.Cut(s, "."); ok {
		return plan.NewCol(rel, col), nil
	}
	return plan.NewCol("", s), nil
}
