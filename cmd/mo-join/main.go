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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/config"
	"github.com/matrixorigin/mojoin/pkg/logutil"
)

var configFlag = flag.String("cfg", "", "configuration file of the join engine, defaults are used if empty")

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Printf("Usage: %s [-cfg configFile] queryFile\n", os.Args[0])
		os.Exit(-1)
	}
	os.Exit(run(flag.Arg(0)))
}

func run(queryFile string) int {
	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.LoadFile(*configFlag); err != nil {
			fmt.Printf("error:%v\n", err)
			return 1
		}
	}
	logutil.SetupMOLogger(&cfg.Log)

	if *cpuProfilePathFlag != "" {
		stop := startCPUProfile()
		defer stop()
	}
	if *allocsProfilePathFlag != "" {
		defer writeAllocsProfile()
	}
	if cfg.Metric.Enable {
		srv := startMetricServer(cfg.Metric.Addr)
		defer srv.Close()
	}

	q, err := loadQuery(queryFile)
	if err != nil {
		fmt.Printf("error:%v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()
	if err = execute(ctx, cfg, q, os.Stdout); err != nil {
		return reportError(queryFile, err)
	}
	return 0
}

// reportError logs a failed join and returns the exit code, 2 when the
// join was rejected before any row was read.
func reportError(queryFile string, err error) int {
	fields := []zap.Field{zap.String("query", queryFile), zap.Error(err)}
	msg := err.Error()
	var me *moerr.Error
	if errors.As(err, &me) {
		fields = append(fields, zap.Uint16("code", me.ErrorCode()), zap.String("sql-state", me.SqlState()))
		msg = me.Display()
	}
	logutil.Error("join failed", fields...)
	fmt.Printf("error:%s\n", msg)
	if moerr.IsCompileError(err) {
		return 2
	}
	return 1
}
