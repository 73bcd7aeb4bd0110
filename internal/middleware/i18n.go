package middleware

import (
	"context"
	"net/http"
	"strings"

	"blocksmith/internal/i18n"
)

type localeContextKey struct{}

// LocaleKey stores the negotiated locale in the request context.
var LocaleKey = localeContextKey{}

// I18N negotiates the response locale for each request: an explicit
// X-Locale header wins, then Accept-Language, then the configured
// default.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		return i18n.Match(v)
	}
	if v := r.Header.Get("Accept-Language"); v != "" {
		return i18n.Match(v)
	}
	return fallback
}

// LocaleFromContext returns the negotiated locale, defaulting to English.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}
