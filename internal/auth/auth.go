// Package auth checks operator credentials and carries the signed-in
// session through the request context.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sidoarjo/callcenter/internal/core"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// It is core.ErrBadCredentials so error mapping needs no auth import.
var ErrInvalidCredentials = core.ErrBadCredentials

// Authenticator verifies username and password against configured bcrypt hashes.
type Authenticator struct {
	users map[string][]byte

	// dummy is compared for unknown users so both paths cost one bcrypt run.
	dummy []byte
}

// NewAuthenticator parses "username:bcrypt-hash" entries.
func NewAuthenticator(entries []string) (*Authenticator, error) {
	a := &Authenticator{users: make(map[string][]byte, len(entries))}
	cost := bcrypt.MinCost

	for _, entry := range entries {
		name, hash, ok := strings.Cut(strings.TrimSpace(entry), ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("auth user entry %q: want username:bcrypt-hash", name)
		}
		c, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			return nil, fmt.Errorf("auth user %s: %w", name, err)
		}
		if _, dup := a.users[name]; dup {
			return nil, fmt.Errorf("auth user %s listed twice", name)
		}
		a.users[name] = []byte(hash)
		cost = max(cost, c)
	}
	if len(a.users) == 0 {
		return nil, errors.New("no auth users configured")
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("callcenter-unknown-user"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	a.dummy = dummy
	return a, nil
}

// Authenticate returns nil when password matches the user's hash.
func (a *Authenticator) Authenticate(username, password string) error {
	hash, ok := a.users[strings.TrimSpace(username)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(a.dummy, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for AUTH_USERS.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
