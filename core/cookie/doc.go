// Package cookie provides construction and inspection helpers for HTTP
// cookies that carry credentials.
//
// Cookies built here default to the strictest browser attributes: Path "/",
// HttpOnly, Secure, and SameSite=Strict. Functional options relax or adjust
// individual attributes when an endpoint needs a narrower path or a custom
// lifetime:
//
//	c, err := cookie.New("access_token", token,
//		cookie.WithPath("/api"),
//		cookie.WithExpires(time.Now().Add(15*time.Minute)),
//	)
//
// Revocation is expressed as a synthesized cookie rather than a deletion
// API: Expire returns a cookie with an empty value and a Unix epoch expiry,
// which instructs the browser to drop its stored copy.
//
// The package also exposes the read-side helpers the authentication layer
// needs: All returns every cookie sharing a name (duplicates are legal on
// the wire), and ExpiredByDate reports whether a received cookie carries a
// stale expiry timestamp and should not be trusted as a credential.
//
// Values are stored verbatim. Tokens handled by this module are opaque and
// verified by the embedding application, so no signing or encryption layer
// is applied on top.
package cookie
