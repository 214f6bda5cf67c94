// Copyright 2026 The cntr-go Authors.
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

// Package logger wraps log/slog with the five severities this tool's
// operators expect (TRACE, DEBUG, INFO, WARNING, ERROR) and a JSON-or-text
// handler switch, so the attach command can log to the operator's terminal
// while the long-lived exec daemon logs to a rotated file instead (it has
// no terminal of its own once the operator detaches).
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity names, using a five-level scheme.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

// Custom slog levels: INFO/WARN/ERROR reuse slog's own values so standard
// library log lines interleave sensibly; TRACE sits below DEBUG and OFF
// sits above ERROR so it suppresses everything.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

func levelToSeverity(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return TRACE
	case l < LevelInfo:
		return DEBUG
	case l < LevelWarn:
		return INFO
	case l < LevelError:
		return WARNING
	default:
		return ERROR
	}
}

func severityToLevel(severity string) slog.Level {
	switch severity {
	case TRACE:
		return LevelTrace
	case DEBUG:
		return LevelDebug
	case WARNING:
		return LevelWarn
	case ERROR:
		return LevelError
	case OFF:
		return LevelOff
	default:
		return LevelInfo
	}
}

// RotateConfig mirrors the subset of lumberjack's own options this tool
// exposes for the daemon's log file.
type RotateConfig struct {
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// DefaultRotateConfig matches lumberjack's own sane defaults.
func DefaultRotateConfig() RotateConfig {
	return RotateConfig{MaxSizeMB: 100, MaxBackups: 5, Compress: false}
}

type loggerFactory struct {
	writer io.Writer
	file   *lumberjack.Logger
	format string
	level  *slog.LevelVar
}

var (
	defaultLoggerFactory = &loggerFactory{writer: os.Stderr, format: "text", level: new(slog.LevelVar)}
	defaultLogger        = slog.New(defaultLoggerFactory.createHandler())
)

func (f *loggerFactory) createHandler() slog.Handler {
	return f.createHandlerOn(f.writer)
}

func (f *loggerFactory) createHandlerOn(w io.Writer) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey {
			level := a.Value.Any().(slog.Level)
			a.Key = "severity"
			a.Value = slog.StringValue(levelToSeverity(level))
		}
		return a
	}
	if f.format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: f.level, ReplaceAttr: replace})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: f.level, ReplaceAttr: replace})
}

// SetSeverity sets the minimum severity that reaches the configured writer.
func SetSeverity(severity string) {
	defaultLoggerFactory.level.Set(severityToLevel(severity))
}

// SetFormat switches between "text" and "json" output.
func SetFormat(format string) {
	defaultLoggerFactory.format = format
	defaultLogger = slog.New(defaultLoggerFactory.createHandler())
}

// InitLogFile redirects logging to a lumberjack-rotated file, for the exec
// daemon, which outlives the attaching terminal.
func InitLogFile(path string, rotate RotateConfig) error {
	if path == "" {
		return fmt.Errorf("log file path must not be empty")
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotate.MaxSizeMB,
		MaxBackups: rotate.MaxBackups,
		Compress:   rotate.Compress,
	}
	defaultLoggerFactory.file = file
	defaultLoggerFactory.writer = file
	defaultLogger = slog.New(defaultLoggerFactory.createHandler())
	return nil
}

// Logger returns the shared structured logger, e.g. to pass a
// *slog.Logger into a component that prefers dependency injection over the
// package-level helpers below.
func Logger() *slog.Logger { return defaultLogger }

func Tracef(format string, args ...any) { log(LevelTrace, format, args...) }
func Debugf(format string, args ...any) { log(LevelDebug, format, args...) }
func Infof(format string, args ...any)  { log(LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { log(LevelWarn, format, args...) }
func Errorf(format string, args ...any) { log(LevelError, format, args...) }

func log(level slog.Level, format string, args ...any) {
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	defaultLogger.Log(context.Background(), level, msg)
}

// Since is a small helper for one-line "operation took Nms" debug logs
// around syscall-heavy setup steps (namespace entry, overlay staging).
func Since(start time.Time, op string) {
	Debugf("%s took %s", op, time.Since(start))
}
