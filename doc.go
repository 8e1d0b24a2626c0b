// Package authkit provides cookie-based HTTP authentication for Go web
// applications: a middleware that drives the access/refresh token protocol,
// pluggable token stores, and the small web framework pieces needed to host
// it. The library uses generics for type-safe identities, functional options
// for configuration, and interface-based design so applications keep full
// control over token issuance and validity.
//
// # Package Organization
//
// The library is organized into three main categories:
//
//   - Core: framework components and the auth protocol vocabulary
//   - Middleware: the auth middleware plus tracing and logging
//   - Integrations: database connection management
//
// # Core Packages
//
//	github.com/dmitrymomot/authkit/core/auth      - Token types, authenticator interfaces, grants and logout intents
//	github.com/dmitrymomot/authkit/core/authstore - Memory, Redis, and Postgres token stores
//	github.com/dmitrymomot/authkit/core/config    - Type-safe environment variable loading
//	github.com/dmitrymomot/authkit/core/cookie    - Secure HTTP cookie construction and inspection
//	github.com/dmitrymomot/authkit/core/handler   - Handler, response, and middleware contracts
//	github.com/dmitrymomot/authkit/core/logger    - Structured logging attribute helpers
//	github.com/dmitrymomot/authkit/core/response  - JSON, string, redirect, and error responses
//	github.com/dmitrymomot/authkit/core/router    - Type-safe HTTP router on net/http ServeMux
//	github.com/dmitrymomot/authkit/core/server    - HTTP server with graceful shutdown
//
// # Middleware Packages
//
//	github.com/dmitrymomot/authkit/middleware - Auth, RequestID, and Logging middleware
//
// # Integration Packages
//
//	github.com/dmitrymomot/authkit/integration/database/pg    - PostgreSQL connection management (pgx)
//	github.com/dmitrymomot/authkit/integration/database/redis - Redis connection management (go-redis)
//
// # Quick Start
//
// Wire a token store and the middleware into a router:
//
//	store := authstore.NewMemory[User]()
//
//	r := router.New[*router.Context]()
//	r.Use(middleware.Auth[*router.Context, User](store))
//
//	r.Post("/login", func(ctx *router.Context) handler.Response {
//		sess, err := store.Login(ctx, authenticate(ctx))
//		if err != nil {
//			return response.Error(response.ErrUnauthorized)
//		}
//		middleware.GrantAccessToken(ctx, auth.NewAccessGrantAt(sess.AccessToken, sess.AccessExpiresAt))
//		middleware.GrantRefreshToken(ctx, auth.NewRefreshGrantAt(sess.RefreshToken, sess.RefreshExpiresAt))
//		return response.JSON(map[string]string{"status": "ok"})
//	})
//
//	r.Get("/me", func(ctx *router.Context) handler.Response {
//		user, err := middleware.RequireIdentity[User](ctx)
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(user)
//	})
//
// See examples/webapp for a complete runnable application.
package authkit
