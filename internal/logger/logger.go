package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const TIME_FORMAT = "2006-01-02T15:04:05.000Z07:00"

var once sync.Once
var Log zerolog.Logger

func configureLogger(out io.Writer) {
	zerolog.TimeFieldFormat = TIME_FORMAT

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TIME_FORMAT,
	}

	Log = zerolog.New(output).With().Timestamp().Logger()
}

// Configures the shared logger on first use and sets the global level.
// Later calls only change the level.
func GetLoggerConfigured(level zerolog.Level) *zerolog.Logger {
	once.Do(func() {
		configureLogger(os.Stdout)
	})
	zerolog.SetGlobalLevel(level)
	return &Log
}

func GetLogger() *zerolog.Logger {
	once.Do(func() {
		configureLogger(os.Stdout)
	})
	return &Log
}

// Maps a config string ("debug", "warn", ...) to a level, info if unknown
func ParseLevel(level string) zerolog.Level {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}
