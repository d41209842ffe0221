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
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// Value is a single nullable field value. The type is kept on NULL values
// too, so a NULL still knows which column type it stands for.
type Value struct {
	oid    T
	isNull bool
	i64    int64
	f64    float64
	str    string
}

func Null(oid T) Value {
	return Value{oid: oid, isNull: true}
}

func NewBool(v bool) Value {
	if v {
		return Value{oid: T_bool, i64: 1}
	}
	return Value{oid: T_bool}
}

func NewInt8(v int8) Value {
	return Value{oid: T_int8, i64: int64(v)}
}

func NewInt16(v int16) Value {
	return Value{oid: T_int16, i64: int64(v)}
}

func NewInt32(v int32) Value {
	return Value{oid: T_int32, i64: int64(v)}
}

func NewInt64(v int64) Value {
	return Value{oid: T_int64, i64: v}
}

func NewFloat64(v float64) Value {
	return Value{oid: T_float64, f64: v}
}

func NewVarchar(v string) Value {
	return Value{oid: T_varchar, str: v}
}

func (v Value) Oid() T {
	return v.oid
}

func (v Value) IsNull() bool {
	return v.isNull
}

func (v Value) Bool() bool {
	return v.i64 != 0
}

// Int64 returns the value of any integer type widened to int64.
func (v Value) Int64() int64 {
	return v.i64
}

func (v Value) Float64() float64 {
	return v.f64
}

func (v Value) String() string {
	if v.isNull {
		return "NULL"
	}
	switch v.oid.Family() {
	case FamilyBool:
		return strconv.FormatBool(v.Bool())
	case FamilyInt:
		return strconv.FormatInt(v.i64, 10)
	case FamilyFloat:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case FamilyString:
		return v.str
	}
	return "?"
}

// Equal is structural equality: both NULL, or both non-NULL with equal
// values in the same type family. Join matching must not rely on it for
// NULLs, since SQL never matches NULL with NULL.
func (v Value) Equal(o Value) bool {
	if v.oid.Family() != o.oid.Family() {
		return false
	}
	if v.isNull || o.isNull {
		return v.isNull == o.isNull
	}
	switch v.oid.Family() {
	case FamilyBool, FamilyInt:
		return v.i64 == o.i64
	case FamilyFloat:
		return math.Float64bits(normalizeFloat(v.f64)) == math.Float64bits(normalizeFloat(o.f64))
	case FamilyString:
		return v.str == o.str
	}
	return true
}

// AppendKey appends a canonical encoding of v to buf. Values that are Equal
// encode to the same bytes, so the encoding can be used to group and hash.
func (v Value) AppendKey(buf []byte) []byte {
	buf = append(buf, byte(v.oid.Family()))
	if v.isNull {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	switch v.oid.Family() {
	case FamilyBool, FamilyInt:
		buf = binary.BigEndian.AppendUint64(buf, uint64(v.i64))
	case FamilyFloat:
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(normalizeFloat(v.f64)))
	case FamilyString:
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(v.str)))
		buf = append(buf, v.str...)
	}
	return buf
}

// ParseValue parses the text form of a value of type oid. NULL (any case)
// yields a NULL. An empty string is a NULL too, except for strings where it
// is the empty string.
func ParseValue(oid T, s string) (Value, error) {
	if strings.EqualFold(strings.TrimSpace(s), "NULL") {
		return Null(oid), nil
	}
	if oid.Family() == FamilyString {
		return NewVarchar(s), nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Null(oid), nil
	}
	switch oid.Family() {
	case FamilyBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case FamilyInt:
		bits := map[T]int{T_int8: 8, T_int16: 16, T_int32: 32, T_int64: 64}[oid]
		i, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return Value{}, err
		}
		return Value{oid: oid, i64: i}, nil
	case FamilyFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, err
		}
		return NewFloat64(f), nil
	}
	return Value{}, strconv.ErrSyntax
}

func normalizeFloat(f float64) float64 {
	if f == 0 {
		// -0 and +0 are equal
		return 0
	}
	if math.IsNaN(f) {
		return math.NaN()
	}
	return f
}
