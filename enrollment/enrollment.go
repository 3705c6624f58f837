// Package enrollment is the enrollments API module: the learning room's
// view of which courses the user is taking.
package enrollment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/fallback"
)

// Enrollment ties the current user to a course with progress tracking.
type Enrollment struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Progress   int       `json:"progress"` // percent complete, 0-100
	EnrolledAt time.Time `json:"enrolled_at"`
}

type listResponse struct {
	Items []Enrollment `json:"items"`
}

type enrollRequest struct {
	CourseID string `json:"course_id"`
}

// Client exposes the /enrollments endpoints.
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

// List returns the user's enrollments, synthesized when the backend is down.
func (c *Client) List(ctx context.Context) ([]Enrollment, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) ([]Enrollment, error) {
			var resp listResponse
			if err := c.api.GetJSON(ctx, "/enrollments", &resp); err != nil {
				return nil, err
			}
			return resp.Items, nil
		},
		SyntheticList,
		func(items []Enrollment) bool { return len(items) > 0 },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}

// Enroll adds the user to a course. On failure a synthetic enrollment for
// the same course is returned so the learning room can render it.
func (c *Client) Enroll(ctx context.Context, courseID string) (*Enrollment, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) (*Enrollment, error) {
			var e Enrollment
			if err := c.api.PostJSON(ctx, "/enrollments", enrollRequest{CourseID: courseID}, &e); err != nil {
				return nil, err
			}
			return &e, nil
		},
		func() *Enrollment { return Synthetic(courseID) },
		func(e *Enrollment) bool { return e != nil && e.ID != "" },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}
