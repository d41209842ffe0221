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
	"errors"
	"fmt"
	"io"
	"runtime/debug"
)

const MySQLDefaultSqlState = "HY000"

const (
	// 0 - 99 is OK.  They do not contain info, and are special handled
	// using a static instance, no alloc.
	Ok uint16 = 0

	// Group 1: Internal errors
	ErrStart            uint16 = 20100
	ErrInternal         uint16 = 20101
	ErrQueryInterrupted uint16 = 20104

	// Group 3: invalid input
	ErrBadConfig    uint16 = 20300
	ErrInvalidInput uint16 = 20301
	ErrInvalidArg   uint16 = 20302

	// Group 4: unexpected state and io errors
	ErrInvalidState  uint16 = 20400
	ErrUnexpectedEOF uint16 = 20407

	// Group 10: join compilation. Everything in this group is raised while a
	// join is being compiled, before any row is read, and is never retried.
	ErrCompileStart         uint16 = 21000
	ErrUnsupportedJoinShape uint16 = 21001
	ErrSchemaMismatch       uint16 = 21002
	ErrCompileEnd           uint16 = 21099

	// Group End: max value of MOErrorCode
	ErrEnd uint16 = 65535
)

type moErrorMsgItem struct {
	sqlStates        []string
	errorMsgOrFormat string
}

var errorMsgRefer = map[uint16]moErrorMsgItem{
	Ok: {[]string{"00000"}, "ok"},

	// Group 1: Internal errors
	ErrStart:            {[]string{MySQLDefaultSqlState}, "Start error code"},
	ErrInternal:         {[]string{MySQLDefaultSqlState}, "internal error: %s"},
	ErrQueryInterrupted: {[]string{"70100"}, "query interrupted"},

	// Group 3: invalid input
	ErrBadConfig:    {[]string{MySQLDefaultSqlState}, "invalid configuration: %s"},
	ErrInvalidInput: {[]string{MySQLDefaultSqlState}, "invalid input: %s"},
	ErrInvalidArg:   {[]string{"HY000"}, "invalid argument %s, bad value %s"},

	// Group 4: unexpected state and io errors
	ErrInvalidState:  {[]string{MySQLDefaultSqlState}, "invalid state %s"},
	ErrUnexpectedEOF: {[]string{MySQLDefaultSqlState}, "unexpected end of file %s"},

	// Group 10: join compilation
	ErrCompileStart:         {[]string{MySQLDefaultSqlState}, "Start join compile error code"},
	ErrUnsupportedJoinShape: {[]string{"0A000"}, "unsupported join: %s"},
	ErrSchemaMismatch:       {[]string{"42S22"}, "join schema mismatch: %s"},
	ErrCompileEnd:           {[]string{MySQLDefaultSqlState}, "End join compile error code"},

	// Group End: max value of MOErrorCode
	ErrEnd: {[]string{MySQLDefaultSqlState}, "internal error: end of errcode code"},
}

func newError(ctx context.Context, code uint16, args ...any) *Error {
	var err *Error
	item, has := errorMsgRefer[code]
	if !has {
		panic(NewInternalError(ctx, "not exist MOErrorCode: %d", code))
	}
	if len(args) == 0 {
		err = &Error{
			code:     code,
			message:  item.errorMsgOrFormat,
			sqlState: item.sqlStates[0],
		}
	} else {
		err = &Error{
			code:     code,
			message:  fmt.Sprintf(item.errorMsgOrFormat, args...),
			sqlState: item.sqlStates[0],
		}
	}
	if ctx != nil {
		if v, ok := ctx.Value(detailKey{}).(string); ok {
			err.detail = v
		}
	}
	return err
}

type Error struct {
	code     uint16
	message  string
	sqlState string
	detail   string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Display() string {
	if len(e.detail) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.detail)
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) SqlState() string {
	return e.sqlState
}

func IsMoErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}

	var me *Error
	if !errors.As(e, &me) {
		// This is not a moerr
		return false
	}
	return me.code == rc
}

// IsCompileError reports whether e was raised while compiling a join.
// Such errors abort the query before any row is processed.
func IsCompileError(e error) bool {
	var me *Error
	if !errors.As(e, &me) {
		return false
	}
	return me.code > ErrCompileStart && me.code < ErrCompileEnd
}

// ConvertPanicError converts a runtime panic to internal error.
func ConvertPanicError(ctx context.Context, v interface{}) *Error {
	if e, ok := v.(*Error); ok {
		return e
	}
	return newError(ctx, ErrInternal, fmt.Sprintf("panic %v: %s", v, debug.Stack()))
}

// ConvertGoError converts a go error into mo error.
// Note here we must return error, because nil error
// is the same as nil *Error -- Go strangeness.
func ConvertGoError(ctx context.Context, err error) error {
	// nil is nil
	if err == nil {
		return err
	}

	// already a moerr, return it as is
	if _, ok := err.(*Error); ok {
		return err
	}

	// Convert a few well known os/go error.
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// if io.EOF reaches here, we believe it is not expected.
		return NewUnexpectedEOF(ctx, err.Error())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewQueryInterrupted(ctx)
	}

	return NewInternalError(ctx, "convert go error to mo error %v", err)
}

type detailKey struct{}

// AttachDetail returns a context whose errors carry detail, usually the
// query or operator that raised them.
func AttachDetail(ctx context.Context, detail string) context.Context {
	return context.WithValue(ctx, detailKey{}, detail)
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInternal, xmsg)
}

func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return NewInternalError(Context(), msg, args...)
}

func NewQueryInterrupted(ctx context.Context) *Error {
	return newError(ctx, ErrQueryInterrupted)
}

func NewBadConfig(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrBadConfig, xmsg)
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidInput, xmsg)
}

func NewInvalidArg(ctx context.Context, arg string, val any) *Error {
	return newError(ctx, ErrInvalidArg, arg, fmt.Sprintf("%v", val))
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrInvalidState, xmsg)
}

func NewUnexpectedEOF(ctx context.Context, f string) *Error {
	return newError(ctx, ErrUnexpectedEOF, f)
}

func NewUnsupportedJoinShape(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrUnsupportedJoinShape, xmsg)
}

func NewSchemaMismatch(ctx context.Context, msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return newError(ctx, ErrSchemaMismatch, xmsg)
}

// Context returns the context used by the NoCtx constructors.
func Context() context.Context {
	return context.Background()
}
