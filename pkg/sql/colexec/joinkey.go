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

package colexec

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/matrixorigin/mojoin/pkg/container/row"
	"github.com/matrixorigin/mojoin/pkg/container/types"
)

// JoinKey is the tuple of values a row is matched on.
type JoinKey struct {
	vals []types.Value
}

// ExtractKey pulls the values at keyCols out of r, in keyCols order.
// NULL components are kept.
func ExtractKey(r row.Row, keyCols []int32) JoinKey {
	vals := make([]types.Value, len(keyCols))
	for i, pos := range keyCols {
		vals[i] = r.Value(int(pos))
	}
	return JoinKey{vals: vals}
}

func (k JoinKey) Len() int {
	return len(k.vals)
}

func (k JoinKey) Value(i int) types.Value {
	return k.vals[i]
}

// HasNull reports whether any component is NULL. Such a key matches
// nothing, not even another key with NULLs in the same places.
func (k JoinKey) HasNull() bool {
	for _, v := range k.vals {
		if v.IsNull() {
			return true
		}
	}
	return false
}

// Encode returns the canonical byte form of the key. Keys of the two sides
// are equal exactly when their encodings are equal.
func (k JoinKey) Encode() []byte {
	return k.AppendEncode(make([]byte, 0, 10*len(k.vals)))
}

func (k JoinKey) AppendEncode(buf []byte) []byte {
	for _, v := range k.vals {
		buf = v.AppendKey(buf)
	}
	return buf
}

func (k JoinKey) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range k.vals {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// KeyHash is the partitioning hash of a key. Both inputs of a join must
// route with it so that equal keys meet on the same unit.
func KeyHash(k JoinKey) uint64 {
	return xxhash.Sum64(k.Encode())
}
