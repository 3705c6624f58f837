// Package catalog is the course-catalog API module.
package catalog

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/fallback"
)

// Course is a catalog entry.
type Course struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Level      string  `json:"level"`
	Instructor string  `json:"instructor"`
	Price      int     `json:"price"`
	Rating     float64 `json:"rating"`
	Lessons    int     `json:"lessons"`
}

// Query shapes a catalog listing: filters, search and sort.
type Query struct {
	Category string
	Level    string
	Search   string
	Sort     string
	Page     int
	PerPage  int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Level != "" {
		v.Set("level", q.Level)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

type listResponse struct {
	Items []Course `json:"items"`
	Total int      `json:"total"`
}

// Client exposes the /courses endpoints.
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

// List returns the courses matching q. With the backend down the listing is
// synthesized deterministically from the same query, so the catalog always
// renders.
func (c *Client) List(ctx context.Context, q Query) ([]Course, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) ([]Course, error) {
			path := "/courses"
			if encoded := q.values().Encode(); encoded != "" {
				path += "?" + encoded
			}
			var resp listResponse
			if err := c.api.GetJSON(ctx, path, &resp); err != nil {
				return nil, err
			}
			return resp.Items, nil
		},
		func() []Course { return SyntheticList(q) },
		func(items []Course) bool { return len(items) > 0 },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}

// Get returns a single course by ID, synthesized from the ID on failure.
func (c *Client) Get(ctx context.Context, id string) (*Course, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) (*Course, error) {
			var course Course
			if err := c.api.GetJSON(ctx, "/courses/"+url.PathEscape(id), &course); err != nil {
				return nil, err
			}
			return &course, nil
		},
		func() *Course { return SyntheticCourse(id) },
		func(course *Course) bool { return course != nil && course.ID != "" },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}
