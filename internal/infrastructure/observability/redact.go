package observability

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// bearerPattern matches "Bearer <token>" appearing inside free-form values.
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`)

	// jwtPattern matches a raw compact JWT. Segments shorter than 10 characters
	// are ignored so version strings survive.
	jwtPattern = regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`)
)

// newRedactAttr returns a slog ReplaceAttr that masks credentials by field name and by value shape.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("authorization"),
		masq.WithFieldName("password"),
		masq.WithFieldName("oldPassword"),
		masq.WithFieldName("newPassword"),
		masq.WithFieldName("token"),
		masq.WithFieldName("bearerToken"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("dsn"),
		masq.WithFieldPrefix("password_"),
		masq.WithFieldPrefix("secret_"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(jwtPattern),
	)
}

// RedactHandler applies the same masking to handlers that have no ReplaceAttr hook,
// such as the otelslog bridge.
type RedactHandler struct {
	next    slog.Handler
	replace func([]string, slog.Attr) slog.Attr
	groups  []string
}

// NewRedactHandler wraps next.
func NewRedactHandler(next slog.Handler) *RedactHandler {
	return &RedactHandler{next: next, replace: newRedactAttr()}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.replace(h.groups, a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.replace(h.groups, a)
	}
	return &RedactHandler{next: h.next.WithAttrs(redacted), replace: h.replace, groups: h.groups}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	groups := append(append([]string(nil), h.groups...), name)
	return &RedactHandler{next: h.next.WithGroup(name), replace: h.replace, groups: groups}
}
