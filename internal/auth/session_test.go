package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sidoarjo/callcenter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *SessionManager {
	return NewSessionManager(config.AuthConfig{
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionName:   "test_session",
		SessionMaxAge: time.Hour,
	})
}

// withCookies copies the cookies set on rec into a new request.
func withCookies(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSessionRoundTrip(t *testing.T) {
	m := testManager()

	_, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)

	rec := httptest.NewRecorder()
	created, err := m.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "admin")
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	loaded, err := m.Load(withCookies(rec))
	require.NoError(t, err)
	assert.Equal(t, "admin", loaded.Username)
	assert.True(t, created.LoggedInAt.Equal(loaded.LoggedInAt))

	out := httptest.NewRecorder()
	require.NoError(t, m.Logout(out, withCookies(rec)))
	expired := out.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Less(t, expired[0].MaxAge, 0)
}

func TestSessionExpires(t *testing.T) {
	m := testManager()
	rec := httptest.NewRecorder()
	_, err := m.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "admin")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Load(withCookies(rec))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionRejectsForeignSecret(t *testing.T) {
	rec := httptest.NewRecorder()
	_, err := testManager().Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "admin")
	require.NoError(t, err)

	other := NewSessionManager(config.AuthConfig{
		SessionSecret: "ffffffffffffffffffffffffffffffff",
		SessionName:   "test_session",
		SessionMaxAge: time.Hour,
	})
	_, err = other.Load(withCookies(rec))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), &Session{Username: "admin"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "admin", s.Username)
}
