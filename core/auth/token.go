package auth

// AccessToken is an opaque short-lived bearer credential.
//
// It is a distinct defined type rather than a bare string so an access token
// can never be passed where a refresh token is expected. Tokens are
// comparable and ordered, so they can key maps and sorted structures.
type AccessToken string

// RefreshToken is an opaque long-lived credential used solely to mint new
// access tokens. See AccessToken for why the type is distinct.
type RefreshToken string

// String returns the raw token value.
func (t AccessToken) String() string { return string(t) }

// IsZero reports whether the token is empty.
func (t AccessToken) IsZero() bool { return t == "" }

// String returns the raw token value.
func (t RefreshToken) String() string { return string(t) }

// IsZero reports whether the token is empty.
func (t RefreshToken) IsZero() bool { return t == "" }
