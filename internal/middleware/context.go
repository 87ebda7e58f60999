package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "req_id"
	ctxKeyIsHTMX    ctxKey = "is_htmx"
	ctxKeyPartial   ctxKey = "hx_partial"
	ctxKeySession   ctxKey = "session"
	ctxKeyLang      ctxKey = "lang"
	ctxKeyNotes     ctxKey = "log_notes"
)

// requestNotes carries what inner middlewares learn about a request back to
// RequestLogger, which runs outside them.
type requestNotes struct {
	htmx    bool
	trigger string
	session string
}

func withNotes(ctx context.Context) (context.Context, *requestNotes) {
	n := &requestNotes{}
	return context.WithValue(ctx, ctxKeyNotes, n), n
}

// note updates the request notes when RequestLogger is installed.
func note(ctx context.Context, fn func(*requestNotes)) {
	if n, ok := ctx.Value(ctxKeyNotes).(*requestNotes); ok && n != nil {
		fn(n)
	}
}

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithSession attaches session data to ctx.
func WithSession(ctx context.Context, s *SessionData) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext returns the session attached by the Session middleware, or nil.
func SessionFromContext(ctx context.Context) *SessionData {
	s, _ := ctx.Value(ctxKeySession).(*SessionData)
	return s
}

// WithLang stores the resolved language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKeyLang, lang)
}

// Lang returns the language resolved by the Locale middleware, or "".
func Lang(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyLang).(string)
	return v
}
