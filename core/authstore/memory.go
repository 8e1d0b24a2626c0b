package authstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/auth"
)

// Session is the pair of credentials a store issues at login or refresh time.
type Session struct {
	AccessToken      auth.AccessToken
	AccessExpiresAt  time.Time
	RefreshToken     auth.RefreshToken
	RefreshExpiresAt time.Time
}

type memoryRecord[Identity any] struct {
	identity  Identity
	expiresAt time.Time
}

// Memory is an in-memory token store implementing auth.RefreshAuthenticator.
// Tokens are opaque UUIDs; identities are kept verbatim. Intended for tests
// and single-process deployments; everything else should use Redis or
// Postgres.
type Memory[Identity any] struct {
	mu       sync.Mutex
	access   map[auth.AccessToken]memoryRecord[Identity]
	refresh  map[auth.RefreshToken]memoryRecord[Identity]
	settings settings
}

// NewMemory creates an in-memory token store.
func NewMemory[Identity any](opts ...Option) *Memory[Identity] {
	return &Memory[Identity]{
		access:   make(map[auth.AccessToken]memoryRecord[Identity]),
		refresh:  make(map[auth.RefreshToken]memoryRecord[Identity]),
		settings: applyOptions(opts),
	}
}

// Login issues a fresh access/refresh token pair for the identity.
func (m *Memory[Identity]) Login(ctx context.Context, identity Identity) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	sess := Session{
		AccessToken:      auth.AccessToken(uuid.New().String()),
		AccessExpiresAt:  now.Add(m.settings.accessTTL),
		RefreshToken:     auth.RefreshToken(uuid.New().String()),
		RefreshExpiresAt: now.Add(m.settings.refreshTTL),
	}

	m.access[sess.AccessToken] = memoryRecord[Identity]{identity: identity, expiresAt: sess.AccessExpiresAt}
	m.refresh[sess.RefreshToken] = memoryRecord[Identity]{identity: identity, expiresAt: sess.RefreshExpiresAt}

	return sess, nil
}

// Refresh trades a valid refresh token for a new session. The old refresh
// token is rotated out.
func (m *Memory[Identity]) Refresh(ctx context.Context, token auth.RefreshToken) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.refresh[token]
	if !ok {
		return Session{}, ErrTokenNotFound
	}
	if time.Now().After(rec.expiresAt) {
		delete(m.refresh, token)
		return Session{}, ErrTokenExpired
	}
	delete(m.refresh, token)

	now := time.Now()
	sess := Session{
		AccessToken:      auth.AccessToken(uuid.New().String()),
		AccessExpiresAt:  now.Add(m.settings.accessTTL),
		RefreshToken:     auth.RefreshToken(uuid.New().String()),
		RefreshExpiresAt: now.Add(m.settings.refreshTTL),
	}

	m.access[sess.AccessToken] = memoryRecord[Identity]{identity: rec.identity, expiresAt: sess.AccessExpiresAt}
	m.refresh[sess.RefreshToken] = memoryRecord[Identity]{identity: rec.identity, expiresAt: sess.RefreshExpiresAt}

	return sess, nil
}

// VerifyAccessToken implements auth.Authenticator.
func (m *Memory[Identity]) VerifyAccessToken(ctx context.Context, token auth.AccessToken) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero Identity
	rec, ok := m.access[token]
	if !ok {
		return zero, ErrTokenNotFound
	}
	if time.Now().After(rec.expiresAt) {
		delete(m.access, token)
		return zero, ErrTokenExpired
	}
	return rec.identity, nil
}

// UpdateAccessToken implements auth.Authenticator with a sliding renewal
// policy: the token is rotated once its remaining lifetime drops below the
// configured threshold.
func (m *Memory[Identity]) UpdateAccessToken(ctx context.Context, token auth.AccessToken, identity *Identity) (*auth.Renewal, error) {
	if m.settings.renewWithin <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.access[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if time.Until(rec.expiresAt) >= m.settings.renewWithin {
		return nil, nil
	}

	next := auth.AccessToken(uuid.New().String())
	m.access[next] = memoryRecord[Identity]{identity: rec.identity, expiresAt: time.Now().Add(m.settings.accessTTL)}
	delete(m.access, token)

	return &auth.Renewal{Token: next, TTL: m.settings.accessTTL}, nil
}

// RevokeAccessToken implements auth.Authenticator.
func (m *Memory[Identity]) RevokeAccessToken(ctx context.Context, token auth.AccessToken, identity *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.access, token)
	return nil
}

// VerifyRefreshToken implements auth.RefreshAuthenticator.
func (m *Memory[Identity]) VerifyRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.refresh[token]
	if !ok {
		return ErrTokenNotFound
	}
	if time.Now().After(rec.expiresAt) {
		delete(m.refresh, token)
		return ErrTokenExpired
	}
	return nil
}

// RevokeRefreshToken implements auth.RefreshAuthenticator.
func (m *Memory[Identity]) RevokeRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.refresh, token)
	return nil
}

// AccessTTL returns the configured access token lifetime.
func (m *Memory[Identity]) AccessTTL() time.Duration { return m.settings.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (m *Memory[Identity]) RefreshTTL() time.Duration { return m.settings.refreshTTL }
