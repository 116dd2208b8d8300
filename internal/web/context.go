package web

import (
	"net/http"

	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/sidoarjo/callcenter/internal/web/middleware"
)

// requestMetadata adds the client IP to the context for the import log.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithIPAddress(r.Context(), middleware.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
