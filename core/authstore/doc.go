// Package authstore provides ready-made token stores implementing the
// auth.Authenticator and auth.RefreshAuthenticator interfaces.
//
// Three backends share the same semantics and configuration surface:
//
//   - Memory: process-local maps, for tests and single-instance apps
//   - Redis: go-redis backed, TTL handled by key expiry
//   - Postgres: pgx backed, single auth_tokens table
//
// All of them issue opaque UUID tokens, rotate refresh tokens on use, and
// renew access tokens with a sliding window (see WithRenewWithin). Wire one
// into the middleware directly:
//
//	store := authstore.NewMemory[User](authstore.WithAccessTTL(15 * time.Minute))
//	r.Use(middleware.Auth[*router.Context](store))
//
// Applications with bespoke token formats (JWT, PASETO) implement the
// auth interfaces themselves instead.
package authstore
