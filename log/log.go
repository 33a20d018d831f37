// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin structured-logging layer over log/slog with a
// package-tagged convenience constructor.
package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Logger is the logging interface used across the repo.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

var (
	level atomic.Int64
	root  atomic.Pointer[slog.Logger]
)

func init() {
	level.Store(int64(slog.LevelInfo))
	root.Store(slog.New(newHandler(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))))
}

// SetVerbosity adjusts the global log level; higher is chattier
// (0=error .. 3=debug), matching the CLI verbosity flag.
func SetVerbosity(verbosity int) {
	switch {
	case verbosity <= 0:
		level.Store(int64(slog.LevelError))
	case verbosity == 1:
		level.Store(int64(slog.LevelWarn))
	case verbosity == 2:
		level.Store(int64(slog.LevelInfo))
	default:
		level.Store(int64(slog.LevelDebug))
	}
}

// WithContext returns a logger tagged with the given key/value pairs,
// conventionally ("pkg", "<package name>").
func WithContext(args ...any) Logger {
	return &logger{inner: root.Load().With(args...)}
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) enabled(lvl slog.Level) bool {
	return lvl >= slog.Level(level.Load())
}

func (l *logger) log(lvl slog.Level, msg string, args ...any) {
	if !l.enabled(lvl) {
		return
	}
	l.inner.Log(context.Background(), lvl, msg, args...)
}

func (l *logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *logger) With(args ...any) Logger {
	return &logger{inner: l.inner.With(args...)}
}
