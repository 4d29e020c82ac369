// Package logging configures the zerolog logger used by every command and
// carries it through context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	Level string
	// File, when set, receives JSON log lines in addition to the console.
	File   string
	Debug  bool
	Stderr io.Writer
}

// New builds a logger and returns a closer for the optional log file.
func New(opt Options) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if opt.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opt.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("parse log level %q: %w", opt.Level, err)
		}
		level = l
	}
	if opt.Debug {
		level = zerolog.DebugLevel
	}
	stderr := opt.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}}
	closer := func() error { return nil }
	if opt.File != "" {
		f, err := os.OpenFile(opt.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// WithRun attaches logger to ctx with a fresh run_id field and returns the id.
func WithRun(ctx context.Context, logger zerolog.Logger, fields map[string]interface{}) (context.Context, string) {
	id := uuid.NewString()
	l := logger.With().Str("run_id", id).Fields(fields).Logger()
	return l.WithContext(ctx), id
}

// From returns the logger stored in ctx, or a disabled logger.
func From(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
