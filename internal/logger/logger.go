// Package logger is the site's structured logger, a thin layer over zerolog
// that takes alternating key/value pairs the way handlers report context.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer // defaults to stdout
	// File additionally receives JSON lines, rotated at 10MB.
	File string
}

// Logger writes leveled entries. A nil *Logger discards everything.
type Logger struct {
	zl zerolog.Logger
}

func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	out := opts.Writer
	if out == nil {
		out = os.Stdout
	}
	if opts.HumanReadable {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}
	return &Logger{zl: zerolog.New(out).Level(level).With().Timestamp().Logger()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a logger that adds kv to every entry.
func (l *Logger) With(kv ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Fields(kv).Logger()}
}

func (l *Logger) Debug(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.zl.Debug().Fields(kv).Msg(msg)
}

func (l *Logger) Info(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.zl.Info().Fields(kv).Msg(msg)
}

func (l *Logger) Warn(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.zl.Warn().Fields(kv).Msg(msg)
}

// Error logs msg at error level with err under the "error" key.
func (l *Logger) Error(err error, msg string, kv ...any) {
	if l == nil {
		return
	}
	l.zl.Error().Err(err).Fields(kv).Msg(msg)
}
