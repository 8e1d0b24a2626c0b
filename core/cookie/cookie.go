package cookie

import (
	"net/http"
	"time"
)

// MaxCookieSize is the maximum serialized size for a cookie (4KB).
const MaxCookieSize = 4096

// New builds a cookie with the given name and value. Defaults are
// Path "/", HttpOnly, Secure, and SameSite=Strict; use options to override.
// Returns ErrCookieTooLarge when the serialized cookie exceeds MaxCookieSize.
func New(name, value string, opts ...Option) (*http.Cookie, error) {
	options := applyOptions(defaults(), opts)

	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Expires:  options.Expires,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	}

	if len(c.String()) > MaxCookieSize {
		return nil, ErrCookieTooLarge{
			Name: name,
			Size: len(c.String()),
			Max:  MaxCookieSize,
		}
	}

	return c, nil
}

// Expire builds a revocation cookie: empty value, Unix epoch expiry.
// Browsers drop the cookie immediately on receipt.
func Expire(name string, opts ...Option) *http.Cookie {
	options := applyOptions(defaults(), opts)

	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	}
}

// Get retrieves the first cookie value for the given name.
func Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrCookieNotFound
	}
	return c.Value, nil
}

// All returns every cookie with the given name, in header order.
// Duplicate names are legal on the wire (different paths or domains),
// so callers that care about ambiguity must inspect the full list.
func All(r *http.Request, name string) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range r.Cookies() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ExpiredByDate reports whether the cookie carries an expiry timestamp that
// is already in the past. Cookies without an Expires attribute never expire
// by date and always return false.
func ExpiredByDate(c *http.Cookie) bool {
	if c.Expires.IsZero() {
		return false
	}
	return c.Expires.Before(time.Now())
}
