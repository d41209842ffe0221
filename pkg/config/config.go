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

package config

import (
	"context"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/mojoin/pkg/common/moerr"
	"github.com/matrixorigin/mojoin/pkg/logutil"
)

const (
	defaultParallelism       = 4
	defaultChannelBufferSize = 16
	defaultOutputBatchRows   = 8192
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
)

// JoinParameters of the join runtime
type JoinParameters struct {
	//number of parallel join units. default: 4
	Parallelism int `toml:"parallelism"`

	//capacity of the channels between the shuffles and the join units. default: 16
	ChannelBufferSize int `toml:"channel-buffer-size"`

	//max rows of one output batch, a closed window larger than that is split. default: 8192
	OutputBatchRows int64 `toml:"output-batch-rows"`

	//size of the goroutine pool running the pipelines, at least parallelism + 2. default: parallelism + 2
	PoolSize int `toml:"pool-size"`
}

// MetricParameters of the prometheus collectors
type MetricParameters struct {
	//default is false. if true, metrics can be scraped through addr/metrics while a join runs
	Enable bool `toml:"enable"`

	//listening address of the metrics endpoint. default: 127.0.0.1:7001
	Addr string `toml:"addr"`
}

type Config struct {
	Join   JoinParameters    `toml:"join"`
	Log    logutil.LogConfig `toml:"log"`
	Metric MetricParameters  `toml:"metric"`
}

// Default returns a configuration with every default value set.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaultValues()
	return cfg
}

// LoadFile reads a TOML configuration file, fills in the defaults for
// missing values and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, moerr.NewBadConfig(context.Background(), "%s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, moerr.NewBadConfig(context.Background(), "%s: unknown key %s", path, undecoded[0])
	}
	cfg.SetDefaultValues()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) SetDefaultValues() {
	if c.Join.Parallelism == 0 {
		c.Join.Parallelism = defaultParallelism
	}
	if c.Join.ChannelBufferSize == 0 {
		c.Join.ChannelBufferSize = defaultChannelBufferSize
	}
	if c.Join.OutputBatchRows == 0 {
		c.Join.OutputBatchRows = defaultOutputBatchRows
	}
	if c.Join.PoolSize == 0 {
		c.Join.PoolSize = c.Join.Parallelism + 2
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.Metric.Addr == "" {
		c.Metric.Addr = "127.0.0.1:7001"
	}
}

func (c *Config) Validate() error {
	return c.Join.Validate()
}

func (p JoinParameters) Validate() error {
	ctx := context.Background()
	if p.Parallelism < 1 {
		return moerr.NewBadConfig(ctx, "join.parallelism must be positive, got %d", p.Parallelism)
	}
	if p.ChannelBufferSize < 0 {
		return moerr.NewBadConfig(ctx, "join.channel-buffer-size must not be negative, got %d", p.ChannelBufferSize)
	}
	if p.OutputBatchRows < 0 {
		return moerr.NewBadConfig(ctx, "join.output-batch-rows must not be negative, got %d", p.OutputBatchRows)
	}
	if p.PoolSize < p.Parallelism+2 {
		return moerr.NewBadConfig(ctx, "join.pool-size %d is too small for parallelism %d, need at least %d",
			p.PoolSize, p.Parallelism, p.Parallelism+2)
	}
	return nil
}
