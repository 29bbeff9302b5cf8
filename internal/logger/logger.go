// Package logger builds the JSON line logger shared by the HTTP layer, migrations and the OCR worker.
// Every line carries a "ts" field rendered in the configured location, matching the access log format.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing one object per line to w.
func New(w io.Writer, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	return zerolog.New(w).Hook(tsHook{loc: loc})
}

// Stdout is New(os.Stdout, loc).
func Stdout(loc *time.Location) zerolog.Logger {
	return New(os.Stdout, loc)
}

// Nop returns a disabled logger, handy for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

type tsHook struct {
	loc *time.Location
}

func (h tsHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("ts", time.Now().In(h.loc).Format(time.RFC3339Nano))
}
