// Package handler defines the request-processing contracts the rest of the
// module is built around: a Context interface carrying the HTTP exchange and
// request-scoped values, a Response render function, and generic HandlerFunc
// and Middleware types parameterized over the context.
//
// A Response is deliberately a function rather than a value. Middleware can
// wrap the function returned by a downstream handler to adjust headers or
// cookies before the body is written, which keeps response post-processing
// side-effect-free until render time:
//
//	func helloHandler(ctx handler.Context) handler.Response {
//		return func(w http.ResponseWriter, r *http.Request) error {
//			w.Header().Set("Content-Type", "text/plain")
//			_, err := w.Write([]byte("Hello, " + ctx.Param("name")))
//			return err
//		}
//	}
//
// Custom context types implement the Context interface to expose
// application-specific accessors while remaining compatible with every
// Middleware[C] in this module.
package handler
