package web

import (
	"net/http"

	"github.com/JonMunkholm/locsort/internal/core"
	mw "github.com/JonMunkholm/locsort/internal/web/middleware"
)

// withClientIP stores the resolved client address in the request context so
// the service can log sort runs against it. It must run after TrustedRealIP.
func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClientIP(r.Context(), mw.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
