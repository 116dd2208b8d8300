package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sidoarjo/callcenter/internal/auth"
	"github.com/sidoarjo/callcenter/internal/core"
)

// SessionLoader is the part of auth.SessionManager the middleware needs.
type SessionLoader interface {
	Load(r *http.Request) (*auth.Session, error)
}

// RequireSession rejects requests without a valid session. API calls get a
// 401 JSON body; page requests are redirected to /login with a next parameter.
// On success the session and username are stored in the request context.
func RequireSession(sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Load(r)
			if err != nil {
				slog.Debug("auth: no session", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				if strings.HasPrefix(r.URL.Path, "/api/") {
					unauthorized(w)
					return
				}
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			ctx := auth.WithSession(r.Context(), s)
			ctx = core.ContextWithUser(ctx, s.Username)
			noteUser(ctx, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	msg := core.MapError(core.ErrUnauthenticated)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"code":    msg.Code,
	})
}
