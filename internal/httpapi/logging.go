package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// zlog is an optional structured logger. If unset, the global zerolog logger is used.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logger() *zerolog.Logger {
	if zlog != nil {
		return zlog
	}
	return &log.Logger
}

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("CROPD_LOG_LEVEL"))

// SetDefaultLogLevel overrides the level used when a request carries no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logRequest emits one line per handled request when lvl allows it. Failed
// requests are also logged at LevelError.
func logRequest(r *http.Request, lvl, want LogLevel, op, model string, status int, start time.Time, err error) {
	if status < 500 && lvl < want && !(err != nil && lvl >= LevelError) {
		return
	}
	l := logger()
	var z *zerolog.Event
	switch {
	case status >= 500:
		z = l.Error()
	case err != nil:
		z = l.Warn()
	default:
		z = l.Info()
	}
	z = z.Str("op", op).Str("path", r.URL.Path).Int("status", status).Dur("dur", time.Since(start))
	if model != "" {
		z = z.Str("model", model)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	if err != nil {
		z = z.Err(err)
	}
	z.Msg(op + " end")
}
