package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type LoggerType uint8

const (
	ConsoleLogger LoggerType = iota
	JSONLogger
)

// Component loggers. They discard everything until Init is called.
var (
	Root = zerolog.Nop()
	VM   = zerolog.Nop()
	CLI  = zerolog.Nop()
)

// Options for Init
type Options struct {
	// Default Warn. Debug enables the per-instruction trace.
	LogLevel zerolog.Level
	Type     LoggerType
	// Defaults to os.Stderr; stdout belongs to the running program.
	Out io.Writer
}

func ParseLogLevel(loglevel string) (zerolog.Level, error) {
	if loglevel == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(loglevel)
}

func Init(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	switch opts.Type {
	case ConsoleLogger:
		Root = zerolog.New(newConsoleWriter(out)).Level(opts.LogLevel).
			With().Timestamp().Logger()
	default:
		Root = zerolog.New(out).Level(opts.LogLevel).
			With().Timestamp().Logger()
	}
	VM = Root.With().Str("component", "vm").Logger()
	CLI = Root.With().Str("component", "cli").Logger()
}

func newConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.TimeOnly}

	cw.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-5s|", i))
	}
	cw.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s=", i)
	}
	return cw
}
