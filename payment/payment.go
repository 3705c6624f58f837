// Package payment is the payments API module: checkout and payment history.
package payment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/fallback"
)

// Payment statuses the backend reports. StatusDemo marks synthetic receipts
// so a fallback checkout is never mistaken for a captured payment.
const (
	StatusPaid = "paid"
	StatusDemo = "demo"
)

// Payment is one entry in the payment history.
type Payment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Amount    int       `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is a checkout request: one or more courses plus an optional coupon.
type Order struct {
	CourseIDs  []string `json:"course_ids"`
	CouponCode string   `json:"coupon_code,omitempty"`
	Amount     int      `json:"amount"`
}

type historyResponse struct {
	Items []Payment `json:"items"`
}

// Client exposes the /payments endpoints.
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

// History returns the user's payment history, synthesized when the backend
// is down.
func (c *Client) History(ctx context.Context) ([]Payment, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) ([]Payment, error) {
			var resp historyResponse
			if err := c.api.GetJSON(ctx, "/payments", &resp); err != nil {
				return nil, err
			}
			return resp.Items, nil
		},
		SyntheticHistory,
		func(items []Payment) bool { return len(items) > 0 },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}

// Checkout submits an order. A failed call yields a synthetic receipt with
// StatusDemo; it renders like a purchase but is distinguishable from one.
func (c *Client) Checkout(ctx context.Context, order Order) (*Payment, error) {
	return fallback.Run(ctx,
		func(ctx context.Context) (*Payment, error) {
			var p Payment
			if err := c.api.PostJSON(ctx, "/payments/checkout", order, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		func() *Payment { return SyntheticReceipt(order) },
		func(p *Payment) bool { return p != nil && p.ID != "" },
		fallback.WithDelay(c.delay), fallback.WithLogger(c.log),
	)
}
