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
	"bytes"
	"fmt"
	"strings"

	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
)

type JoinType int8

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
	// JoinCross has no condition. The planner may produce it but the
	// join operator refuses to run it.
	JoinCross
)

func (t JoinType) String() string {
	switch t {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFull:
		return "FULL"
	case JoinCross:
		return "CROSS"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int8(t))
}

// ParseJoinType accepts INNER, LEFT, RIGHT, FULL and CROSS. The outer
// joins may be followed by OUTER. An empty string is an inner join.
func ParseJoinType(s string) (JoinType, bool) {
	words := strings.Fields(strings.ToUpper(s))
	if len(words) == 0 {
		return JoinInner, true
	}
	outer := false
	switch {
	case len(words) == 2 && words[1] == "OUTER":
		outer = true
	case len(words) != 1:
		return JoinInner, false
	}
	switch words[0] {
	case "INNER":
		return JoinInner, !outer
	case "LEFT":
		return JoinLeft, true
	case "RIGHT":
		return JoinRight, true
	case "FULL":
		return JoinFull, true
	case "CROSS":
		return JoinCross, !outer
	}
	return JoinInner, false
}

type ExprKind int8

const (
	ExprLiteral ExprKind = iota
	ExprCol
	ExprCompare
	ExprAnd
)

type CompareOp int8

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var compareOpNames = [...]string{
	OpEq: "=",
	OpNe: "<>",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

func (op CompareOp) String() string {
	if op < 0 || int(op) >= len(compareOpNames) {
		return "?"
	}
	return compareOpNames[op]
}

// ParseCompareOp maps an operator token onto its CompareOp.
func ParseCompareOp(s string) (CompareOp, bool) {
	switch strings.TrimSpace(s) {
	case "=", "==":
		return OpEq, true
	case "<>", "!=":
		return OpNe, true
	case "<":
		return OpLt, true
	case "<=":
		return OpLe, true
	case ">":
		return OpGt, true
	case ">=":
		return OpGe, true
	}
	return OpEq, false
}

// ColRef references a column by name, optionally qualified by a relation
// name, or by position when Name is empty. RelPos 0 is the left input and
// 1 the right input.
type ColRef struct {
	Rel    string
	Name   string
	RelPos int32
	ColPos int32
}

func (c ColRef) String() string {
	if c.Name == "" {
		return fmt.Sprintf("$%d.%d", c.RelPos, c.ColPos)
	}
	if c.Rel == "" {
		return c.Name
	}
	return c.Rel + "." + c.Name
}

// Expr is a node of a parsed predicate tree.
//
//	ExprLiteral: Lit
//	ExprCol:     Col
//	ExprCompare: Op applied to Args[0] and Args[1]
//	ExprAnd:     conjunction of Args
type Expr struct {
	Kind ExprKind
	Lit  types.Value
	Col  ColRef
	Op   CompareOp
	Args []*Expr
}

func NewLiteral(v types.Value) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: v}
}

func NewCol(rel, name string) *Expr {
	return &Expr{Kind: ExprCol, Col: ColRef{Rel: rel, Name: name}}
}

func NewPosCol(relPos, colPos int32) *Expr {
	return &Expr{Kind: ExprCol, Col: ColRef{RelPos: relPos, ColPos: colPos}}
}

func NewCompare(op CompareOp, l, r *Expr) *Expr {
	return &Expr{Kind: ExprCompare, Op: op, Args: []*Expr{l, r}}
}

func NewEq(l, r *Expr) *Expr {
	return NewCompare(OpEq, l, r)
}

func NewAnd(args ...*Expr) *Expr {
	return &Expr{Kind: ExprAnd, Args: args}
}

func (e *Expr) String() string {
	var buf bytes.Buffer
	e.format(&buf)
	return buf.String()
}

func (e *Expr) format(buf *bytes.Buffer) {
	if e == nil {
		buf.WriteString("<nil>")
		return
	}
	switch e.Kind {
	case ExprLiteral:
		if e.Lit.Oid() == types.T_varchar && !e.Lit.IsNull() {
			buf.WriteString("'" + e.Lit.String() + "'")
		} else {
			buf.WriteString(e.Lit.String())
		}
	case ExprCol:
		buf.WriteString(e.Col.String())
	case ExprCompare:
		for i, arg := range e.Args {
			if i > 0 {
				buf.WriteString(" " + e.Op.String() + " ")
			}
			arg.format(buf)
		}
	case ExprAnd:
		for i, arg := range e.Args {
			if i > 0 {
				buf.WriteString(" AND ")
			}
			arg.format(buf)
		}
	default:
		buf.WriteString("?")
	}
}

// JoinNode is the planner's description of a join before validation.
type JoinNode struct {
	Type      JoinType
	NumInputs int
	On        *Expr
}

// JoinSpec is a validated equi-join: column LeftKeys[i] of the left schema
// equals column RightKeys[i] of the right schema. Only BuildJoinSpec
// creates one and it is never modified afterwards.
type JoinSpec struct {
	Type      JoinType
	LeftKeys  []int32
	RightKeys []int32
	Left      *row.Schema
	Right     *row.Schema
	Result    *row.Schema
}

func (s *JoinSpec) String() string {
	var buf bytes.Buffer
	buf.WriteString(strings.ToLower(s.Type.String()))
	buf.WriteString(" join on ")
	for i := range s.LeftKeys {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		buf.WriteString(qualified(s.Left, s.LeftKeys[i]))
		buf.WriteString(" = ")
		buf.WriteString(qualified(s.Right, s.RightKeys[i]))
	}
	return buf.String()
}

func qualified(s *row.Schema, pos int32) string {
	name := s.Field(int(pos)).Name
	if s.Name() == "" {
		return name
	}
	return s.Name() + "." + name
}
