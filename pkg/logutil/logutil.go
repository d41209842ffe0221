// Copyright 2022 Matrix Origin
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

package logutil

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var gLogger atomic.Value

func init() {
	SetupMOLogger(&LogConfig{
		Level:        zapcore.InfoLevel.String(),
		Format:       "console",
		DisableStore: true,
	})
}

// SetupMOLogger sets up the global logger.
func SetupMOLogger(conf *LogConfig) {
	logger := initMOLogger(conf)
	replaceGlobalLogger(logger)
	Debugf("MO logger init, level=%s, format=%s", conf.Level, conf.Format)
}

func initMOLogger(cfg *LogConfig) *zap.Logger {
	level := cfg.getLevel()
	sinks := cfg.getSinks()
	cores := make([]zapcore.Core, 0, len(sinks))
	for i, sink := range sinks {
		if i == 0 {
			cores = append(cores, zapcore.NewCore(sink.enc, sink.out, level))
			continue
		}
		cores = append(cores, zapcore.NewCore(sink.enc, sink.out, zap.WarnLevel))
	}
	return zap.New(zapcore.NewTee(cores...), cfg.getOptions()...)
}

func replaceGlobalLogger(logger *zap.Logger) {
	gLogger.Store(logger)
}

// GetGlobalLogger returns the current global zap Logger.
func GetGlobalLogger() *zap.Logger {
	return gLogger.Load().(*zap.Logger)
}

type queryKey struct{}

// WithQuery attaches a query id which Ctx loggers report as a field.
func WithQuery(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryKey{}, id)
}

// QueryField returns the query id carried by ctx as a zap field.
func QueryField(ctx context.Context) zap.Field {
	if ctx != nil {
		if id, ok := ctx.Value(queryKey{}).(string); ok {
			return zap.String("query", id)
		}
	}
	return zap.Skip()
}

// Ctx returns the global logger annotated with the fields carried by ctx.
func Ctx(ctx context.Context) *zap.Logger {
	return GetGlobalLogger().With(QueryField(ctx))
}

func Debug(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Debugf only use in develop mode
func Debugf(msg string, fields ...interface{}) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Sugar().Debugf(msg, fields...)
}

// Infof only use in develop mode
func Infof(msg string, fields ...interface{}) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Sugar().Infof(msg, fields...)
}

// Warnf only use in develop mode
func Warnf(msg string, fields ...interface{}) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Sugar().Warnf(msg, fields...)
}

// Errorf only use in develop mode
func Errorf(msg string, fields ...interface{}) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1), zap.AddStacktrace(zap.ErrorLevel)).Sugar().Errorf(msg, fields...)
}
