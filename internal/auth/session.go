package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/sidoarjo/callcenter/internal/config"
)

// ErrNoSession is returned by Load when the request carries no valid session.
var ErrNoSession = errors.New("no session")

const (
	keyUser       = "user"
	keyLoggedInAt = "logged_in_at"
)

// Session is the signed-in operator for one request.
type Session struct {
	Username   string
	LoggedInAt time.Time
}

type contextKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// SessionManager stores sessions in signed cookies.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionManager builds a cookie store from the auth settings.
func NewSessionManager(cfg config.AuthConfig) *SessionManager {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(cfg.SessionMaxAge.Seconds()))

	return &SessionManager{
		store:  store,
		name:   cfg.SessionName,
		maxAge: cfg.SessionMaxAge,
		now:    time.Now,
	}
}

// Load returns the session carried by r, or ErrNoSession.
func (m *SessionManager) Load(r *http.Request) (*Session, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess.IsNew {
		return nil, ErrNoSession
	}

	user, _ := sess.Values[keyUser].(string)
	at, _ := sess.Values[keyLoggedInAt].(int64)
	if user == "" || at == 0 {
		return nil, ErrNoSession
	}

	loggedIn := time.Unix(at, 0)
	if m.maxAge > 0 && m.now().Sub(loggedIn) > m.maxAge {
		return nil, ErrNoSession
	}
	return &Session{Username: user, LoggedInAt: loggedIn}, nil
}

// Login starts a session for username.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, username string) (*Session, error) {
	// A cookie signed with an old secret fails to decode; start fresh.
	sess, _ := m.store.Get(r, m.name)
	if sess == nil {
		sess = sessions.NewSession(m.store, m.name)
	}

	s := &Session{Username: username, LoggedInAt: m.now().Truncate(time.Second)}
	sess.Values[keyUser] = s.Username
	sess.Values[keyLoggedInAt] = s.LoggedInAt.Unix()
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Logout expires the session cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	if sess == nil {
		sess = sessions.NewSession(m.store, m.name)
	}
	sess.Options.MaxAge = -1
	sess.Values = map[any]any{}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}
