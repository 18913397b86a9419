package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"
)

type Options struct {
	Level string
	Debug bool
	File  string
}

// New builds a JSON logger on stdout, teeing to a rotated file when File is set.
// The returned closer releases the file and is never nil.
func New(opts Options) (*slog.Logger, io.Closer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = slog.LevelInfo
	}
	if opts.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
		}
		out = io.MultiWriter(os.Stdout, lj)
		closer = lj
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
