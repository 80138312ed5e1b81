// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

// Package wirelog is the ambient logging sink for everything above the
// parser core: the read-loop driver and cmd/httpwire-probe. Within package
// httpwire only the driver (driver.go) calls it; Parser itself never logs —
// terminal conditions are reported through Error returns, not log lines.
package wirelog

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options configures a Logger. A zero Options logs to stdout at info level.
type Options struct {
	Stdout     bool
	Level      Level
	Filename   string // used when Stdout is false
	MaxSize    int    // megabytes
	MaxAge     int    // days
	MaxBackups int
}

// Logger wraps a zap sugared logger behind the four verbs the driver and
// cmd tool actually use.
type Logger struct {
	sugared *zap.SugaredLogger
}

func (l Logger) Debugf(template string, args ...any) { l.sugared.Debugf(template, args...) }
func (l Logger) Infof(template string, args ...any)  { l.sugared.Infof(template, args...) }
func (l Logger) Warnf(template string, args ...any)  { l.sugared.Warnf(template, args...) }
func (l Logger) Errorf(template string, args ...any) { l.sugared.Errorf(template, args...) }

// New builds a Logger from opt. A non-stdout sink rotates through
// lumberjack with the given size/age/backup limits.
func New(opt Options) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	var w zapcore.WriteSyncer
	switch {
	case opt.Stdout || opt.Filename == "":
		w = zapcore.AddSync(os.Stdout)
	default:
		if err := os.MkdirAll(filepath.Dir(opt.Filename), 0o755); err != nil {
			panic(err)
		}
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opt.Filename,
			MaxSize:    opt.MaxSize,
			MaxBackups: opt.MaxBackups,
			MaxAge:     opt.MaxAge,
			LocalTime:  true,
		})
	}

	core := zapcore.NewCore(encoder, w, toZapLevel(opt.Level))
	return Logger{sugared: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

var (
	stdOpt = Options{Stdout: true, Level: LevelInfo}
	std    = New(stdOpt)
)

// SetOptions reconfigures the package-level logger.
func SetOptions(opt Options) {
	stdOpt = opt
	std = New(opt)
}

// SetLevel reconfigures just the level, keeping the current sink.
func SetLevel(l string) {
	stdOpt.Level = Level(strings.ToLower(strings.TrimSpace(l)))
	std = New(stdOpt)
}

func Debugf(template string, args ...any) { std.Debugf(template, args...) }
func Infof(template string, args ...any)  { std.Infof(template, args...) }
func Warnf(template string, args ...any)  { std.Warnf(template, args...) }
func Errorf(template string, args ...any) { std.Errorf(template, args...) }
