package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string

	// File enables a size-rotated copy of the log stream.
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
}

func NewJSONLogger(service, level string) *slog.Logger {
	return newLogger(os.Stdout, service, level)
}

// New builds the service logger. The returned closer releases the rotated
// log file and is a no-op when File is empty.
func New(service string, opts Options) (*slog.Logger, io.Closer) {
	if strings.TrimSpace(opts.File) == "" {
		return NewJSONLogger(service, opts.Level), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.FileMaxSizeMB,
		MaxBackups: opts.FileMaxBackups,
		Compress:   true,
	}
	return newLogger(io.MultiWriter(os.Stdout, file), service, opts.Level), file
}

func newLogger(w io.Writer, service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
