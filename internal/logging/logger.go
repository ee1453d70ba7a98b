package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// New builds the process logger: JSON in production, a console writer
// everywhere else. Unknown levels fall back to info.
func New(appName, env, level string) zerolog.Logger {
	return newLogger(os.Stdout, appName, env, parseLevel(level))
}

func newLogger(out io.Writer, appName, env string, level zerolog.Level) zerolog.Logger {
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", appName).
		Str("env", env).
		Logger()
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// FromContext returns the request logger stored by Middleware. Outside a
// request it returns a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
			return l
		}
	}
	return zerolog.Nop()
}

func IntoContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
