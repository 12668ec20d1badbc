package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Leveled logger used across the service.
// - backed by zerolog (JSON lines, console output in development)
// - provides Debugf/Infof/Warnf/Errorf and Init(level, env)

var (
	mu    sync.RWMutex
	out   io.Writer     = os.Stdout
	level zerolog.Level = zerolog.InfoLevel
	base  zerolog.Logger
)

func init() {
	rebuild()
}

// Init sets the log level (case-insensitive: debug, info, warn, error, fatal) and
// switches to a human-readable console writer when env is "development".
// Call early during startup. Default level is Info.
func Init(l, env string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		out = os.Stdout
	}
	rebuild()
}

// SetOutput redirects log output; used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

// SetLevel changes the level without touching the output.
func SetLevel(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
	rebuild()
}

// rebuild must be called with mu held.
func rebuild() {
	base = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func parseLevel(l string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// L returns the underlying structured logger for callers that attach fields.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

func Debugf(format string, v ...interface{}) { L().Debug().Msgf(format, v...) }
func Infof(format string, v ...interface{})  { L().Info().Msgf(format, v...) }
func Warnf(format string, v ...interface{})  { L().Warn().Msgf(format, v...) }
func Errorf(format string, v ...interface{}) { L().Error().Msgf(format, v...) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}
