// Package logging builds the zerolog logger shared by the CLI, the HTTP
// server and the store.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

const filePermission = 0o664

// Options selects level, format and destination. An empty Path logs to
// Writer; a nil Writer means stderr.
type Options struct {
	Level  string
	Format string
	Path   string
	Writer io.Writer
}

// Logger wraps a zerolog.Logger with the file it may own.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	l := &Logger{}
	var w io.Writer = os.Stderr
	if opts.Writer != nil {
		w = opts.Writer
	}
	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = f
		w = zerolog.SyncWriter(f)
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, NoColor: opts.Path != ""}
	default:
		if l.file != nil {
			l.file.Close()
		}
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	l.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return l, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
