package router

import (
	"net/http"

	"github.com/dmitrymomot/authkit/core/handler"
)

// Router dispatches HTTP requests to type-safe handlers with middleware
// support. It is the host-dispatch surface the auth middleware plugs into;
// any mux that can carry handler.Middleware[C] works in its place.
type Router[C handler.Context] interface {
	http.Handler

	// HTTP method handlers
	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])

	// Method registers a handler for an arbitrary HTTP method.
	Method(method, pattern string, h handler.HandlerFunc[C])

	// Use appends middleware applied to every route registered afterwards.
	Use(middlewares ...handler.Middleware[C])

	// With returns a router sharing this router's mux but carrying
	// additional middleware for the routes registered through it.
	With(middlewares ...handler.Middleware[C]) Router[C]
}

// New creates a new router with the given options.
// Patterns follow net/http ServeMux syntax, including path wildcards:
//
//	r := router.New[*router.Context]()
//	r.Get("/users/{id}", showUser)
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...)
}
