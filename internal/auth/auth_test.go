package auth

import (
	"errors"
	"testing"

	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthenticate(t *testing.T) {
	a, err := NewAuthenticator([]string{
		"admin:" + hashFor(t, "rahasia"),
		"operator:" + hashFor(t, "shift-pagi"),
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  bool
	}{
		{"valid admin", "admin", "rahasia", false},
		{"valid operator", "operator", "shift-pagi", false},
		{"wrong password", "admin", "shift-pagi", true},
		{"unknown user", "tamu", "rahasia", true},
		{"empty password", "admin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Authenticate(tt.user, tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.True(t, errors.Is(err, core.ErrBadCredentials))
		})
	}
}

func TestNewAuthenticator_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
	}{
		{"empty", nil},
		{"missing hash", []string{"admin"}},
		{"not bcrypt", []string{"admin:plaintext"}},
		{"duplicate user", []string{"admin:" + hashFor(t, "a"), "admin:" + hashFor(t, "b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthenticator(tt.entries)
			assert.Error(t, err)
		})
	}
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)

	h, err := HashPassword("rahasia")
	require.NoError(t, err)
	a, err := NewAuthenticator([]string{"admin:" + h})
	require.NoError(t, err)
	assert.NoError(t, a.Authenticate("admin", "rahasia"))
}
