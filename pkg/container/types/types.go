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

package types

import (
	"fmt"
	"strings"
)

type T uint8

const (
	// any family
	T_any T = iota

	// bool family
	T_bool

	// numeric/integer family
	T_int8
	T_int16
	T_int32
	T_int64

	// numeric/float family
	T_float64

	// string family
	T_varchar
)

// Family groups types whose values compare with each other.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyBool
	FamilyInt
	FamilyFloat
	FamilyString
)

type Type struct {
	Oid T
}

func New(oid T) Type {
	return Type{Oid: oid}
}

func (t T) ToType() Type {
	return Type{Oid: t}
}

func (t T) Family() Family {
	switch t {
	case T_bool:
		return FamilyBool
	case T_int8, T_int16, T_int32, T_int64:
		return FamilyInt
	case T_float64:
		return FamilyFloat
	case T_varchar:
		return FamilyString
	}
	return FamilyUnknown
}

func (t T) String() string {
	switch t {
	case T_any:
		return "ANY"
	case T_bool:
		return "BOOL"
	case T_int8:
		return "TINYINT"
	case T_int16:
		return "SMALLINT"
	case T_int32:
		return "INT"
	case T_int64:
		return "BIGINT"
	case T_float64:
		return "DOUBLE"
	case T_varchar:
		return "VARCHAR"
	}
	return fmt.Sprintf("unexpected type: %d", t)
}

func (t Type) String() string {
	return t.Oid.String()
}

// Comparable reports whether values of the two types may be compared for
// equality, which is what an equi-join key needs.
func Comparable(a, b T) bool {
	fa := a.Family()
	return fa != FamilyUnknown && fa == b.Family()
}

// ParseType maps a SQL type name onto its T.
func ParseType(name string) (T, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "BOOL", "BOOLEAN":
		return T_bool, true
	case "TINYINT", "INT8":
		return T_int8, true
	case "SMALLINT", "INT16":
		return T_int16, true
	case "INT", "INTEGER", "INT32":
		return T_int32, true
	case "BIGINT", "INT64":
		return T_int64, true
	case "DOUBLE", "FLOAT64":
		return T_float64, true
	case "VARCHAR", "TEXT", "STRING":
		return T_varchar, true
	}
	return T_any, false
}
