package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/sidoarjo/callcenter/internal/auth"
	"github.com/sidoarjo/callcenter/internal/logging"
	"github.com/sidoarjo/callcenter/internal/web/middleware"
	"github.com/sidoarjo/callcenter/internal/web/templates"
)

// handleHealth reports that the process is serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleLoginPage shows the sign-in form, or skips it for a signed-in user.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, err := s.sessions.Load(r); err == nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, templates.LoginPage(next, ""))
}

// handleLogin checks the posted credentials and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, r, http.StatusBadRequest, templates.LoginPage("/", "Permintaan tidak valid"))
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	next := safeNext(r.PostFormValue("next"))

	if err := s.auth.Authenticate(username, r.PostFormValue("password")); err != nil {
		logging.FromContext(r.Context()).Warn("login failed",
			"user", username,
			"ip", middleware.ClientIP(r),
		)
		render(w, r, http.StatusUnauthorized, templates.LoginPage(next, "Username atau password salah"))
		return
	}

	if _, err := s.sessions.Login(w, r, username); err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("login", "user", username, "ip", middleware.ClientIP(r))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// handleLogout ends the session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.sessions.Load(r); err == nil {
		logging.FromContext(r.Context()).Info("logout", "user", sess.Username)
	}
	if err := s.sessions.Logout(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleDashboardPage renders the landing page.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	f, err := dashboardFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.service.Dashboard(r.Context(), f)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	data := templates.DashboardData{
		Dashboard: d,
		Schemas:   s.service.Schemas(),
		Year:      q.Get("year"),
		From:      q.Get("from"),
		To:        q.Get("to"),
	}
	if sess, ok := auth.FromContext(r.Context()); ok {
		data.User = sess.Username
	}
	render(w, r, http.StatusOK, templates.DashboardPage(data))
}

// render writes a templ component as an HTML response.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	u, err := url.Parse(next)
	if err != nil || next == "" || u.IsAbs() || u.Host != "" ||
		!strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	if strings.HasPrefix(u.Path, "/login") {
		return "/"
	}
	return next
}
