// Package profile is the user-profile API module.
package profile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/fallback"
	"github.com/learnkit/learnkit-go/internal/utils"
)

// Profile is the server-authoritative identity record.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch holds the updatable profile fields. Nil fields are left unchanged.
type Patch struct {
	Nickname *string `json:"nickname,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// Client exposes the /users/me endpoints.
type Client struct {
	api   *client.Client
	delay time.Duration
	log   zerolog.Logger
}

type Option func(*Client)

func WithFallbackDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(api *client.Client, options ...Option) *Client {
	c := &Client{api: api, delay: fallback.DefaultDelay, log: zerolog.Nop()}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Get fetches the current user's profile, serving a synthetic one when the
// backend is unavailable.
func (c *Client) Get(ctx context.Context) (*Profile, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) (*Profile, error) {
			var p Profile
			if err := c.api.GetJSON(ctx, "/users/me", &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		func() *Profile { return Synthetic(DemoEmail) },
		func(p *Profile) bool { return p != nil && p.ID != "" },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}

// Update patches the current user's profile. The updated record comes back
// from the server; on failure the patch is applied to a synthetic profile so
// the caller still renders the edited values.
func (c *Client) Update(ctx context.Context, patch Patch) (*Profile, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) (*Profile, error) {
			var p Profile
			if err := c.api.PatchJSON(ctx, "/users/me", patch, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		func() *Profile {
			p := Synthetic(utils.Value(patch.Email))
			if patch.Nickname != nil {
				p.Nickname = utils.Value(patch.Nickname)
			}
			return p
		},
		func(p *Profile) bool { return p != nil && p.ID != "" },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}
