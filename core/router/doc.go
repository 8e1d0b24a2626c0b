// Package router provides a small generic HTTP router built on net/http's
// ServeMux, carrying the module's type-safe handler and middleware contracts.
//
// It exists so the auth middleware has a first-party dispatch surface to plug
// into; the middleware itself only depends on handler.Context, so any router
// that can thread handler.Middleware[C] works equally well.
//
// Basic usage with the default context:
//
//	r := router.New[*router.Context]()
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Get("/users/{id}", func(ctx *router.Context) handler.Response {
//		return response.JSON(map[string]string{"id": ctx.Param("id")})
//	})
//	http.ListenAndServe(":8080", r)
//
// Custom context types implement handler.Context and are constructed through
// a factory supplied with WithContextFactory.
//
// Errors returned by a Response render function are routed to the error
// handler, which maps statusCode-carrying errors (like response.HTTPError)
// onto the wire and hides everything else behind a generic 500. Panics are
// recovered and surfaced to the error handler as PanicError values.
package router
