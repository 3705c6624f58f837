package client

import (
	"golang.org/x/oauth2"

	interrors "github.com/learnkit/learnkit-go/internal/errors"
	"github.com/learnkit/learnkit-go/session"
)

// TokenSource exposes the session store as an oauth2.TokenSource so the
// session can be plugged into anything that speaks the standard token
// interface. The source reads the store on every call; it never refreshes.
func (c *Client) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{store: c.store}
}

type sessionTokenSource struct {
	store session.Store
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	tok, ok := session.TokenPair(s.store)
	if !ok {
		return nil, interrors.ErrNoSession
	}
	return tok, nil
}
