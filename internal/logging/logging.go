// Copyright 2025 Lumina Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging builds the logr.Logger used by the CLI, backed by zap.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger behavior.
type Options struct {
	// Development switches from JSON to human-readable console output.
	Development bool

	// Level is the minimum level: debug, info, warn or error.
	Level string
}

// New returns a logger writing to stderr so stdout stays reserved for the report.
func New(opts Options) (logr.Logger, error) {
	zapCfg, err := zapConfig(opts)
	if err != nil {
		return logr.Discard(), err
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zapLogger), nil
}

func zapConfig(opts Options) (zap.Config, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	zapCfg := zap.NewProductionConfig()
	if opts.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	// One inventory run logs a handful of lines per region; never drop them
	zapCfg.Sampling = nil

	return zapCfg, nil
}
