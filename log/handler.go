// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const termTimeFormat = "01-02|15:04:05.000"

// handler renders records in a compact terminal format, colorized when the
// writer is a tty.
type handler struct {
	mu       sync.Mutex
	wr       io.Writer
	useColor bool
	attrs    []slog.Attr
}

func newHandler(wr io.Writer, useColor bool) slog.Handler {
	return &handler{wr: wr, useColor: useColor}
}

func (h *handler) Enabled(_ context.Context, _ slog.Level) bool {
	// level filtering happens in the logger wrapper
	return true
}

func (h *handler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{
		wr:       h.wr,
		useColor: h.useColor,
		attrs:    append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(h.colorLevel(r.Level))
	sb.WriteByte('[')
	sb.WriteString(r.Time.Format(termTimeFormat))
	sb.WriteString("] ")
	sb.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(fmt.Sprint(a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.wr, sb.String())
	return err
}

func (h *handler) colorLevel(lvl slog.Level) string {
	if !h.useColor {
		return lvl.String() + " "
	}
	switch {
	case lvl >= slog.LevelError:
		return "\x1b[31mERROR\x1b[0m "
	case lvl >= slog.LevelWarn:
		return "\x1b[33mWARN\x1b[0m  "
	case lvl >= slog.LevelInfo:
		return "\x1b[32mINFO\x1b[0m  "
	default:
		return "\x1b[36mDEBUG\x1b[0m "
	}
}
