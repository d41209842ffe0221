// Copyright 2021 - 2022 Matrix Origin
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

package moerr

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileErrors(t *testing.T) {
	ctx := context.Background()

	err := NewUnsupportedJoinShape(ctx, "non-equal predicate %s", ">")
	require.Equal(t, "unsupported join: non-equal predicate >", err.Error())
	require.True(t, IsMoErrCode(err, ErrUnsupportedJoinShape))
	require.True(t, IsCompileError(err))
	require.Equal(t, "0A000", err.SqlState())

	err = NewSchemaMismatch(ctx, "column %s not found", "o1.x")
	require.True(t, IsCompileError(err))
	require.False(t, IsMoErrCode(err, ErrUnsupportedJoinShape))

	require.False(t, IsCompileError(NewInternalError(ctx, "boom")))
	require.False(t, IsCompileError(io.EOF))
	require.False(t, IsCompileError(nil))
}

func TestIsMoErrCodeWrapped(t *testing.T) {
	err := fmt.Errorf("compile: %w", NewSchemaMismatch(context.Background(), "x"))
	require.True(t, IsMoErrCode(err, ErrSchemaMismatch))
	require.True(t, IsCompileError(err))
	require.True(t, IsMoErrCode(nil, Ok))
}

func TestConvertGoError(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, ConvertGoError(ctx, nil))
	require.True(t, IsMoErrCode(ConvertGoError(ctx, io.EOF), ErrUnexpectedEOF))
	require.True(t, IsMoErrCode(ConvertGoError(ctx, context.Canceled), ErrQueryInterrupted))
	require.True(t, IsMoErrCode(ConvertGoError(ctx, fmt.Errorf("x")), ErrInternal))

	orig := NewBadConfig(ctx, "parallelism")
	require.Equal(t, orig, ConvertGoError(ctx, orig))
}

func TestConvertPanicError(t *testing.T) {
	ctx := context.Background()
	orig := NewInvalidInput(ctx, "row")
	require.Equal(t, orig, ConvertPanicError(ctx, orig))
	require.True(t, IsMoErrCode(ConvertPanicError(ctx, "oops"), ErrInternal))
}

func TestDetail(t *testing.T) {
	ctx := AttachDetail(context.Background(), "query q1")
	err := NewInvalidArg(ctx, "parallelism", 0)
	require.Equal(t, "invalid argument parallelism, bad value 0", err.Error())
	require.Equal(t, "invalid argument parallelism, bad value 0: query q1", err.Display())
	require.Equal(t, ErrInvalidArg, err.ErrorCode())

	err = NewInvalidArg(context.Background(), "parallelism", 0)
	require.Equal(t, err.Error(), err.Display())
}
