package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup returns the process logger, switching to a console writer with
// stack traces in debug mode. It also becomes the package level logger
// used by the log package.
func Setup(debug bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	log.Logger = logger
	return logger
}
