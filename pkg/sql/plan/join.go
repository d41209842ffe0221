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

package plan

import (
	"context"

	"go.uber.org/zap"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
	"github.com/matrixorigin/mojoin/pkg/logutil"
	v2 "github.com/matrixorigin/mojoin/pkg/util/metric/v2"
)

const (
	JoinSideNone  int8 = 0
	JoinSideLeft  int8 = 1
	JoinSideRight int8 = 2
)

// BuildJoinSpec checks that node describes a two-input join whose
// condition is a conjunction of column equalities, each relating one left
// column to one right column, and returns the resolved key positions.
func BuildJoinSpec(ctx context.Context, node *JoinNode, left, right *row.Schema) (*JoinSpec, error) {
	spec, err := buildJoinSpec(ctx, node, left, right)
	if err != nil {
		switch {
		case moerr.IsMoErrCode(err, moerr.ErrUnsupportedJoinShape):
			v2.JoinRejectedShapeCounter.Inc()
		case moerr.IsMoErrCode(err, moerr.ErrSchemaMismatch):
			v2.JoinRejectedSchemaCounter.Inc()
		}
		logutil.Ctx(ctx).Debug("join rejected", zap.Error(err))
		return nil, err
	}
	logutil.Ctx(ctx).Debug("join accepted", zap.String("join", spec.String()))
	return spec, nil
}

func buildJoinSpec(ctx context.Context, node *JoinNode, left, right *row.Schema) (*JoinSpec, error) {
	if node == nil {
		return nil, moerr.NewInvalidArg(ctx, "join node", "nil")
	}
	if left == nil || right == nil {
		return nil, moerr.NewInvalidArg(ctx, "join input schema", "nil")
	}
	if node.NumInputs != 2 {
		return nil, moerr.NewUnsupportedJoinShape(ctx, "join needs exactly 2 inputs, got %d", node.NumInputs)
	}
	switch node.Type {
	case JoinInner, JoinLeft, JoinRight, JoinFull:
	case JoinCross:
		return nil, moerr.NewUnsupportedJoinShape(ctx, "cross join is not supported, an equality condition is required")
	default:
		return nil, moerr.NewUnsupportedJoinShape(ctx, "join type %s", node.Type)
	}
	if node.On == nil {
		return nil, moerr.NewUnsupportedJoinShape(ctx, "join without condition is a cross join, an equality condition is required")
	}

	conds := splitConjuncts(node.On)
	spec := &JoinSpec{
		Type:      node.Type,
		LeftKeys:  make([]int32, 0, len(conds)),
		RightKeys: make([]int32, 0, len(conds)),
		Left:      left,
		Right:     right,
		Result:    row.ConcatSchema(left, right),
	}
	for _, cond := range conds {
		lpos, rpos, err := checkEquiCond(ctx, cond, left, right)
		if err != nil {
			return nil, err
		}
		spec.LeftKeys = append(spec.LeftKeys, lpos)
		spec.RightKeys = append(spec.RightKeys, rpos)
	}
	return spec, nil
}

// splitConjuncts flattens nested ANDs, keeping term order. An AND without
// arguments becomes a nil term.
func splitConjuncts(expr *Expr) []*Expr {
	if expr.Kind != ExprAnd {
		return []*Expr{expr}
	}
	if len(expr.Args) == 0 {
		return []*Expr{nil}
	}
	var conds []*Expr
	for _, arg := range expr.Args {
		if arg == nil {
			conds = append(conds, arg)
			continue
		}
		conds = append(conds, splitConjuncts(arg)...)
	}
	return conds
}

// checkEquiCond returns the left and right column positions compared by
// cond, swapping the operands when the right column is written first.
func checkEquiCond(ctx context.Context, cond *Expr, left, right *row.Schema) (int32, int32, error) {
	if cond == nil {
		return 0, 0, moerr.NewUnsupportedJoinShape(ctx, "empty term in join condition is a cross join")
	}
	switch cond.Kind {
	case ExprCompare:
	case ExprLiteral:
		return 0, 0, moerr.NewUnsupportedJoinShape(ctx, "constant join condition '%s' is a cross join", cond)
	default:
		return 0, 0, moerr.NewUnsupportedJoinShape(ctx, "join condition '%s' is not a comparison", cond)
	}
	if cond.Op != OpEq {
		return 0, 0, moerr.NewUnsupportedJoinShape(ctx, "non-equi join condition '%s', only '=' is supported", cond)
	}
	if len(cond.Args) != 2 || cond.Args[0] == nil || cond.Args[1] == nil ||
		cond.Args[0].Kind != ExprCol || cond.Args[1].Kind != ExprCol {
		return 0, 0, moerr.NewUnsupportedJoinShape(ctx, "join condition '%s' must compare two columns", cond)
	}

	lside, lpos, err := resolveCol(ctx, cond.Args[0].Col, left, right)
	if err != nil {
		return 0, 0, err
	}
	rside, rpos, err := resolveCol(ctx, cond.Args[1].Col, left, right)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case lside == JoinSideLeft && rside == JoinSideRight:
	case lside == JoinSideRight && rside == JoinSideLeft:
		lpos, rpos = rpos, lpos
	default:
		return 0, 0, moerr.NewUnsupportedJoinShape(ctx, "join condition '%s' must compare a left column with a right column", cond)
	}

	lt, rt := left.Field(int(lpos)).Typ, right.Field(int(rpos)).Typ
	if !types.Comparable(lt.Oid, rt.Oid) {
		return 0, 0, moerr.NewSchemaMismatch(ctx, "cannot compare %s and %s in '%s'", lt, rt, cond)
	}
	return lpos, rpos, nil
}

// resolveCol finds the input side and column position a reference points to.
func resolveCol(ctx context.Context, ref ColRef, left, right *row.Schema) (int8, int32, error) {
	if ref.Name == "" {
		var s *row.Schema
		side := JoinSideNone
		switch ref.RelPos {
		case 0:
			s, side = left, JoinSideLeft
		case 1:
			s, side = right, JoinSideRight
		default:
			return JoinSideNone, 0, moerr.NewSchemaMismatch(ctx, "column %s refers to input %d of a two-input join", ref, ref.RelPos)
		}
		if ref.ColPos < 0 || int(ref.ColPos) >= s.Len() {
			return JoinSideNone, 0, moerr.NewSchemaMismatch(ctx, "column %s out of range, input has %d columns", ref, s.Len())
		}
		return side, ref.ColPos, nil
	}

	if ref.Rel != "" {
		inLeft, inRight := left.Name() == ref.Rel, right.Name() == ref.Rel
		switch {
		case inLeft && inRight:
			return JoinSideNone, 0, moerr.NewSchemaMismatch(ctx, "relation %s is ambiguous", ref.Rel)
		case inLeft:
			if i, ok := left.FieldIndex(ref.Name); ok {
				return JoinSideLeft, int32(i), nil
			}
		case inRight:
			if i, ok := right.FieldIndex(ref.Name); ok {
				return JoinSideRight, int32(i), nil
			}
		default:
			return JoinSideNone, 0, moerr.NewSchemaMismatch(ctx, "unknown relation %s in column %s", ref.Rel, ref)
		}
		return JoinSideNone, 0, moerr.NewSchemaMismatch(ctx, "column %s does not exist", ref)
	}

	li, inLeft := left.FieldIndex(ref.Name)
	ri, inRight := right.FieldIndex(ref.Name)
	switch {
	case inLeft && inRight:
		return JoinSideNone, 0, moerr.NewSchemaMismatch(ctx, "column reference %s is ambiguous", ref)
	case inLeft:
		return JoinSideLeft, int32(li), nil
	case inRight:
		return JoinSideRight, int32(ri), nil
	}
	return JoinSideNone, 0, moerr.NewSchemaMismatch(ctx, "column %s does not exist", ref)
}
