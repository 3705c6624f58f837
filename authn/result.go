package authn

import (
	"golang.org/x/oauth2"

	"github.com/learnkit/learnkit-go/profile"
)

// Source tags how a session came to be, so callers can tell a real login
// from a demo fallback or a rejection instead of coercing failure into
// success.
type Source int

const (
	// SourceBackend means the backend accepted the operation.
	SourceBackend Source = iota
	// SourceDemo means the backend was unreachable and a synthetic session
	// was issued.
	SourceDemo
	// SourceRejected means the backend answered and said no. No session
	// state was created.
	SourceRejected
)

func (s Source) String() string {
	switch s {
	case SourceBackend:
		return "backend"
	case SourceDemo:
		return "demo"
	case SourceRejected:
		return "rejected"
	}
	return "unknown"
}

// Result is the outcome of a session-lifecycle operation.
type Result struct {
	Source Source
	User   *profile.Profile
	Token  *oauth2.Token
}

// Authenticated reports whether the operation left a live session behind,
// real or demo.
func (r *Result) Authenticated() bool {
	return r != nil && (r.Source == SourceBackend || r.Source == SourceDemo)
}
