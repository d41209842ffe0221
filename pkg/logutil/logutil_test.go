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
	"os"
	"path"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
)

func TestLogConfig_getter(t *testing.T) {
	cfg := &LogConfig{
		Level:        "debug",
		Format:       "console",
		DisableStore: true,
	}
	entry := zapcore.Entry{Level: zapcore.DebugLevel, Message: "console msg"}

	require.Equal(t, zap.NewAtomicLevelAt(zap.DebugLevel).Level(), cfg.getLevel().Level())
	require.Equal(t, 2, len(cfg.getOptions()))
	require.Equal(t, getConsoleSyncer(), cfg.getSyncer())
	wantMsg, _ := getLoggerEncoder("console").EncodeEntry(entry, nil)
	gotMsg, _ := cfg.getEncoder().EncodeEntry(entry, nil)
	require.Equal(t, wantMsg.String(), gotMsg.String())
	require.Equal(t, 1, len(cfg.getSinks()))
	require.Equal(t, zapcore.FatalLevel, cfg.getStacktraceLevel())
}

func TestSetupMOLogger(t *testing.T) {
	defer leaktest.AfterTest(t)()
	tests := []struct {
		name string
		conf *LogConfig
	}{
		{
			name: "console",
			conf: &LogConfig{
				Level:           zapcore.DebugLevel.String(),
				Format:          "console",
				MaxSize:         512,
				DisableStore:    true,
				StacktraceLevel: "panic",
			},
		},
		{
			name: "json",
			conf: &LogConfig{
				Level:           zapcore.DebugLevel.String(),
				Format:          "json",
				MaxSize:         512,
				DisableStore:    true,
				StacktraceLevel: "error",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupMOLogger(tt.conf)
			require.True(t, GetGlobalLogger().Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestSetupMOLogger_panic(t *testing.T) {
	conf := &LogConfig{
		Level:  zapcore.DebugLevel.String(),
		Format: "panic",
	}
	defer func() {
		if err := recover(); err != nil {
			require.Equal(t, moerr.NewInternalError(context.TODO(), "unsupported log format: %s", conf.Format), err)
		} else {
			t.Errorf("not receive panic")
		}
	}()
	SetupMOLogger(conf)
}

func TestBadLevelPanics(t *testing.T) {
	cfg := &LogConfig{Level: "loud", Format: "json"}
	require.Panics(t, func() { cfg.getLevel() })
}

func TestFileLogger(t *testing.T) {
	filename := path.Join(t.TempDir(), "join.log")
	cfg := &LogConfig{
		Level:    "info",
		Format:   "json",
		Filename: filename,
	}
	require.Equal(t, 2, len(cfg.getSinks()))

	logger := initMOLogger(cfg)
	logger.Info("window closed", zap.Int("buckets", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(data), `"buckets":3`)
	require.Equal(t, 512, cfg.MaxSize)
}

func TestConsoleSync(t *testing.T) {
	logger := initMOLogger(&LogConfig{Level: "info", Format: "console"})
	logger.Info("bucket emitted")
	require.NoError(t, logger.Sync())
	require.NoError(t, getConsoleSyncer().Sync())
}

func TestQueryField(t *testing.T) {
	require.Equal(t, zap.Skip(), QueryField(context.Background()))
	ctx := WithQuery(context.Background(), "q-1")
	require.Equal(t, zap.String("query", "q-1"), QueryField(ctx))
	require.NotNil(t, Ctx(ctx))
}
