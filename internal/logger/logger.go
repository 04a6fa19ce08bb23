package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	ctxpkg "github.com/jiayou/auth-service/internal/pkg/context"
)

const serviceName = "auth-service"

// Logger is the process-wide logger. Init or InitWithWriter must run before
// it writes anything; the zero value discards.
var Logger zerolog.Logger

// Options selects level and output format. Empty fields take defaults:
// info level, console output in dev and JSON everywhere else.
type Options struct {
	Level  string
	Format string // json | console
	Env    string
}

func optionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		Env:    os.Getenv("ENV"),
	}
}

// New builds a logger writing to w. An unknown level falls back to info.
func New(w io.Writer, o Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(o.Level)))
	if err != nil || o.Level == "" {
		level = zerolog.InfoLevel
	}

	format := strings.ToLower(strings.TrimSpace(o.Format))
	if format == "" {
		format = "json"
		if o.Env == "" || o.Env == "dev" {
			format = "console"
		}
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures Logger and the zerolog global from LOG_LEVEL,
// LOG_FORMAT and ENV.
func InitWithWriter(w io.Writer) {
	Logger = New(w, optionsFromEnv())
	zlog.Logger = Logger
}

// WithCtx returns Logger enriched with the request id carried by ctx.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	if rid := ctxpkg.GetRequestID(ctx); rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	return &l
}
