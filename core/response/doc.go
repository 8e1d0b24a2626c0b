// Package response provides the handler.Response constructors used across
// the module: plain text, JSON, redirects, and error propagation.
//
// Errors travel as values. A handler returns response.Error(err) and the
// router's error handler renders it; HTTPError values carry their own status
// code and a machine-readable code for the client:
//
//	func protected(ctx *router.Context) handler.Response {
//		identity, err := middleware.RequireIdentity[User](ctx)
//		if err != nil {
//			return response.Error(err) // rendered as 401 unauthorized
//		}
//		return response.JSON(identity)
//	}
//
// Authentication failures use ErrUnauthorized; application-level role checks
// use ErrForbidden. The distinction matters for clients: unauthorized means
// "present a credential", forbidden means "this credential may not do that".
package response
