// Package session holds the client's view of an authenticated session: a
// key/value store for the token pair and the user's role. The store is the
// single source of truth for "am I logged in" — guards, the HTTP client and
// the session manager all read it and none of them keep their own copy.
package session

import "golang.org/x/oauth2"

// Keys used in the store. Access and refresh tokens are always written and
// cleared together; a store must never hold one without the other.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyRole         = "role"
)

// TokenTypeBearer is the only token type the backend issues.
const TokenTypeBearer = "bearer"

// Store is synchronous key/value storage for session state. Implementations
// do not track expiry; an expired token is only discovered when the backend
// rejects it. Storage is assumed to be available — implementations that can
// fail (e.g. file-backed) panic rather than return errors.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string)

	// Clear removes the given keys. Clearing an absent key is a no-op.
	Clear(keys ...string)
}

// SetTokenPair persists both halves of a token pair. The pair invariant is
// enforced here: if either token is empty the pair is cleared instead of
// leaving a half-written session behind.
func SetTokenPair(s Store, tok *oauth2.Token) {
	if tok == nil || tok.AccessToken == "" || tok.RefreshToken == "" {
		ClearTokenPair(s)
		return
	}
	s.Set(KeyAccessToken, tok.AccessToken)
	s.Set(KeyRefreshToken, tok.RefreshToken)
}

// TokenPair returns the stored token pair, or false if the store does not
// hold both halves.
func TokenPair(s Store) (*oauth2.Token, bool) {
	access, okA := s.Get(KeyAccessToken)
	refresh, okR := s.Get(KeyRefreshToken)
	if !okA || !okR || access == "" || refresh == "" {
		return nil, false
	}
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
	}, true
}

// ClearTokenPair removes both token keys as a unit.
func ClearTokenPair(s Store) {
	s.Clear(KeyAccessToken, KeyRefreshToken)
}

// HasSession reports whether the store holds a complete token pair.
func HasSession(s Store) bool {
	_, ok := TokenPair(s)
	return ok
}

// Role returns the stored role, or "" when absent.
func Role(s Store) string {
	role, _ := s.Get(KeyRole)
	return role
}
