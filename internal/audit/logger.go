package audit

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	ctxpkg "github.com/jiayou/auth-service/internal/pkg/context"
)

// Logger provides structured audit logging for identity business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// warnActions are logged at warn level; everything else is info.
var warnActions = map[string]bool{
	"login_failed":         true,
	"identity_deactivated": true,
}

// Record logs one audit event. An "email" field is always masked.
func (l *Logger) Record(ctx context.Context, action string, fields map[string]string) {
	ev := l.log.Info()
	if warnActions[action] {
		ev = l.log.Warn()
	}
	ev = ev.Str("action", action)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		if k == "email" {
			v = maskEmail(v)
		}
		ev = ev.Str(k, v)
	}

	if rid := ctxpkg.GetRequestID(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	if ip := ctxpkg.GetClientIP(ctx); ip != "" {
		ev = ev.Str("ip", ip)
	}
	ev.Msg("audit")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	// Show first 2 chars and domain
	at := 0
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
