// Package middleware provides HTTP middleware for the router, built around
// the cookie-based authentication protocol in core/auth.
//
// The Auth middleware verifies access and refresh token cookies on the way
// in and resolves grant and logout markers into Set-Cookie headers on the
// way out. Handlers interact with it through the extractors (GetIdentity,
// RequireIdentity, RequireRefreshToken) and the markers (GrantAccessToken,
// GrantRefreshToken, Logout).
//
// RequestID and Logging cover request tracing and structured access logs.
package middleware
