package authstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/core/auth"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// Postgres is a token store implementing auth.RefreshAuthenticator on top of
// a single auth_tokens table. Expired rows are skipped on read; call
// DeleteExpired periodically to garbage-collect them.
type Postgres[Identity any] struct {
	pool     *pgxpool.Pool
	settings settings
}

// NewPostgres creates a Postgres-backed token store.
func NewPostgres[Identity any](pool *pgxpool.Pool, opts ...Option) *Postgres[Identity] {
	return &Postgres[Identity]{
		pool:     pool,
		settings: applyOptions(opts),
	}
}

// EnsureSchema creates the auth_tokens table if it does not exist.
// Safe to call on every startup.
func (s *Postgres[Identity]) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS auth_tokens (
			token      TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			identity   JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS auth_tokens_expires_at_idx ON auth_tokens (expires_at);
	`)
	return err
}

// Login issues a fresh access/refresh token pair for the identity.
func (s *Postgres[Identity]) Login(ctx context.Context, identity Identity) (Session, error) {
	payload, err := json.Marshal(identity)
	if err != nil {
		return Session{}, errors.Join(ErrIdentityEncoding, err)
	}

	now := time.Now()
	sess := Session{
		AccessToken:      auth.AccessToken(uuid.New().String()),
		AccessExpiresAt:  now.Add(s.settings.accessTTL),
		RefreshToken:     auth.RefreshToken(uuid.New().String()),
		RefreshExpiresAt: now.Add(s.settings.refreshTTL),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // safe after commit

	const insert = `INSERT INTO auth_tokens (token, kind, identity, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insert, sess.AccessToken.String(), tokenKindAccess, payload, sess.AccessExpiresAt); err != nil {
		return Session{}, err
	}
	if _, err := tx.Exec(ctx, insert, sess.RefreshToken.String(), tokenKindRefresh, payload, sess.RefreshExpiresAt); err != nil {
		return Session{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Refresh trades a valid refresh token for a new session, rotating the
// refresh token out.
func (s *Postgres[Identity]) Refresh(ctx context.Context, token auth.RefreshToken) (Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // safe after commit

	var (
		payload   []byte
		expiresAt time.Time
	)
	err = tx.QueryRow(ctx,
		`DELETE FROM auth_tokens WHERE token = $1 AND kind = $2 RETURNING identity, expires_at`,
		token.String(), tokenKindRefresh,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrTokenNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if time.Now().After(expiresAt) {
		// Row removal still commits; the token was dead either way.
		if err := tx.Commit(ctx); err != nil {
			return Session{}, err
		}
		return Session{}, ErrTokenExpired
	}

	now := time.Now()
	sess := Session{
		AccessToken:      auth.AccessToken(uuid.New().String()),
		AccessExpiresAt:  now.Add(s.settings.accessTTL),
		RefreshToken:     auth.RefreshToken(uuid.New().String()),
		RefreshExpiresAt: now.Add(s.settings.refreshTTL),
	}

	const insert = `INSERT INTO auth_tokens (token, kind, identity, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insert, sess.AccessToken.String(), tokenKindAccess, payload, sess.AccessExpiresAt); err != nil {
		return Session{}, err
	}
	if _, err := tx.Exec(ctx, insert, sess.RefreshToken.String(), tokenKindRefresh, payload, sess.RefreshExpiresAt); err != nil {
		return Session{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// VerifyAccessToken implements auth.Authenticator.
func (s *Postgres[Identity]) VerifyAccessToken(ctx context.Context, token auth.AccessToken) (Identity, error) {
	var identity Identity

	var (
		payload   []byte
		expiresAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT identity, expires_at FROM auth_tokens WHERE token = $1 AND kind = $2`,
		token.String(), tokenKindAccess,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return identity, ErrTokenNotFound
	}
	if err != nil {
		return identity, err
	}
	if time.Now().After(expiresAt) {
		return identity, ErrTokenExpired
	}

	if err := json.Unmarshal(payload, &identity); err != nil {
		return identity, errors.Join(ErrIdentityEncoding, err)
	}
	return identity, nil
}

// UpdateAccessToken implements auth.Authenticator with the sliding renewal
// policy.
func (s *Postgres[Identity]) UpdateAccessToken(ctx context.Context, token auth.AccessToken, identity *Identity) (*auth.Renewal, error) {
	if s.settings.renewWithin <= 0 {
		return nil, nil
	}

	var expiresAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT expires_at FROM auth_tokens WHERE token = $1 AND kind = $2`,
		token.String(), tokenKindAccess,
	).Scan(&expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	if time.Until(expiresAt) >= s.settings.renewWithin {
		return nil, nil
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return nil, errors.Join(ErrIdentityEncoding, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // safe after commit

	next := auth.AccessToken(uuid.New().String())
	if _, err := tx.Exec(ctx,
		`INSERT INTO auth_tokens (token, kind, identity, expires_at) VALUES ($1, $2, $3, $4)`,
		next.String(), tokenKindAccess, payload, time.Now().Add(s.settings.accessTTL),
	); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE token = $1 AND kind = $2`,
		token.String(), tokenKindAccess,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &auth.Renewal{Token: next, TTL: s.settings.accessTTL}, nil
}

// RevokeAccessToken implements auth.Authenticator.
func (s *Postgres[Identity]) RevokeAccessToken(ctx context.Context, token auth.AccessToken, identity *Identity) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM auth_tokens WHERE token = $1 AND kind = $2`,
		token.String(), tokenKindAccess,
	)
	return err
}

// VerifyRefreshToken implements auth.RefreshAuthenticator.
func (s *Postgres[Identity]) VerifyRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	var expiresAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT expires_at FROM auth_tokens WHERE token = $1 AND kind = $2`,
		token.String(), tokenKindRefresh,
	).Scan(&expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTokenNotFound
	}
	if err != nil {
		return err
	}
	if time.Now().After(expiresAt) {
		return ErrTokenExpired
	}
	return nil
}

// RevokeRefreshToken implements auth.RefreshAuthenticator.
func (s *Postgres[Identity]) RevokeRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM auth_tokens WHERE token = $1 AND kind = $2`,
		token.String(), tokenKindRefresh,
	)
	return err
}

// DeleteExpired removes tokens whose lifetime has passed. Returns the number
// of rows removed. Run it from a periodic job.
func (s *Postgres[Identity]) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
