package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trovedash/console/server/internal/config"
)

const (
	defaultLevel = zerolog.InfoLevel
	serviceName  = "trove-console"
)

// NewLogger builds the process logger from the logging section of the config.
// Output goes to stdout unless another writer is given.
func NewLogger(cfg config.Logging, out io.Writer) (zerolog.Logger, error) {
	level := defaultLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to parse log level '%s': %w", cfg.Level, err)
		}
		level = l
	}

	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stdout}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger(), nil
}

// Fatal logs through the global zerolog logger and exits. Use it only where
// no injected logger is available yet.
func Fatal(err any, msg string) {
	logger := log.With().
		Timestamp().
		Caller().
		Logger()

	evt := logger.Fatal().CallerSkipFrame(2)
	if e, ok := err.(error); ok {
		evt.Err(e).Msg(msg)
		return
	}
	evt.Interface("error", err).Msg(msg)
}
