package logger

import (
	"io"
	"os"
	"time"

	"fieldbook/config"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger switches the global logger to a human readable console writer.
func InitLogger() {
	InitLoggerTo(os.Stdout)
}

// InitLoggerTo is InitLogger with a custom destination, used by the CLI to keep stdout clean.
func InitLoggerTo(out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}

	log.Logger = log.Output(output)
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// Store returns the logger used by the MongoDB gateway, tagged with the
// database and collection it serves.
func Store(db, collection string) zerolog.Logger {
	return log.With().Str("component", "store").Str("db", db).Str("collection", collection).Logger()
}

// StoreOp records one finished store operation. Failures the caller reports
// as ordinary outcomes, like a missing field, stay at debug level.
func StoreOp(l zerolog.Logger, op string, err error, elapsed time.Duration, expected bool) {
	var e *zerolog.Event
	switch {
	case err == nil:
		e = l.Trace()
	case expected:
		e = l.Debug().Err(err)
	default:
		e = l.Error().Err(err)
	}
	e.Str("op", op).Dur("elapsed", elapsed).Msg("store operation")
}

func SetLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}
