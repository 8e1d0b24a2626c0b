package authstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/core/auth"
)

const (
	redisAccessPrefix  = "auth:access:"
	redisRefreshPrefix = "auth:refresh:"
)

// Redis is a token store implementing auth.RefreshAuthenticator on top of a
// Redis instance. Tokens are opaque UUIDs used as keys; identities are
// stored as JSON values with the token TTL, so Redis expiry does the
// garbage collection.
type Redis[Identity any] struct {
	client   redis.UniversalClient
	settings settings
}

// NewRedis creates a Redis-backed token store.
func NewRedis[Identity any](client redis.UniversalClient, opts ...Option) *Redis[Identity] {
	return &Redis[Identity]{
		client:   client,
		settings: applyOptions(opts),
	}
}

// Login issues a fresh access/refresh token pair for the identity.
func (s *Redis[Identity]) Login(ctx context.Context, identity Identity) (Session, error) {
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

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisAccessPrefix+sess.AccessToken.String(), payload, s.settings.accessTTL)
	pipe.Set(ctx, redisRefreshPrefix+sess.RefreshToken.String(), payload, s.settings.refreshTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return Session{}, err
	}

	return sess, nil
}

// Refresh trades a valid refresh token for a new session, rotating the
// refresh token out.
func (s *Redis[Identity]) Refresh(ctx context.Context, token auth.RefreshToken) (Session, error) {
	key := redisRefreshPrefix + token.String()

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrTokenNotFound
	}
	if err != nil {
		return Session{}, err
	}

	now := time.Now()
	sess := Session{
		AccessToken:      auth.AccessToken(uuid.New().String()),
		AccessExpiresAt:  now.Add(s.settings.accessTTL),
		RefreshToken:     auth.RefreshToken(uuid.New().String()),
		RefreshExpiresAt: now.Add(s.settings.refreshTTL),
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Set(ctx, redisAccessPrefix+sess.AccessToken.String(), payload, s.settings.accessTTL)
	pipe.Set(ctx, redisRefreshPrefix+sess.RefreshToken.String(), payload, s.settings.refreshTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return Session{}, err
	}

	return sess, nil
}

// VerifyAccessToken implements auth.Authenticator.
func (s *Redis[Identity]) VerifyAccessToken(ctx context.Context, token auth.AccessToken) (Identity, error) {
	var identity Identity

	payload, err := s.client.Get(ctx, redisAccessPrefix+token.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return identity, ErrTokenNotFound
	}
	if err != nil {
		return identity, err
	}

	if err := json.Unmarshal(payload, &identity); err != nil {
		return identity, errors.Join(ErrIdentityEncoding, err)
	}
	return identity, nil
}

// UpdateAccessToken implements auth.Authenticator with the sliding renewal
// policy. The remaining lifetime comes from the Redis key TTL.
func (s *Redis[Identity]) UpdateAccessToken(ctx context.Context, token auth.AccessToken, identity *Identity) (*auth.Renewal, error) {
	if s.settings.renewWithin <= 0 {
		return nil, nil
	}

	key := redisAccessPrefix + token.String()
	remaining, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if remaining < 0 {
		// Key gone or persistent; nothing to rotate.
		return nil, nil
	}
	if remaining >= s.settings.renewWithin {
		return nil, nil
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return nil, errors.Join(ErrIdentityEncoding, err)
	}

	next := auth.AccessToken(uuid.New().String())
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisAccessPrefix+next.String(), payload, s.settings.accessTTL)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return &auth.Renewal{Token: next, TTL: s.settings.accessTTL}, nil
}

// RevokeAccessToken implements auth.Authenticator.
func (s *Redis[Identity]) RevokeAccessToken(ctx context.Context, token auth.AccessToken, identity *Identity) error {
	return s.client.Del(ctx, redisAccessPrefix+token.String()).Err()
}

// VerifyRefreshToken implements auth.RefreshAuthenticator.
func (s *Redis[Identity]) VerifyRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	err := s.client.Get(ctx, redisRefreshPrefix+token.String()).Err()
	if errors.Is(err, redis.Nil) {
		return ErrTokenNotFound
	}
	return err
}

// RevokeRefreshToken implements auth.RefreshAuthenticator.
func (s *Redis[Identity]) RevokeRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	return s.client.Del(ctx, redisRefreshPrefix+token.String()).Err()
}
