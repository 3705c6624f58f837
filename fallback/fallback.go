// Package fallback implements the network-call-with-deterministic-fallback
// policy shared by every API module: try the real call, shape-check the
// payload, and on any failure serve a synthetic fixture after a fixed
// simulated delay. Screens always render something with the backend down;
// the real error is logged, not surfaced.
package fallback

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDelay is the simulated latency before a synthetic response is
// returned, so a fallback does not render suspiciously faster than a real
// network round trip.
const DefaultDelay = 300 * time.Millisecond

type policy struct {
	delay time.Duration
	log   zerolog.Logger
}

// Option modifies the fallback policy for one call.
type Option func(*policy)

// WithDelay overrides the simulated delay. Tests pass 0.
func WithDelay(d time.Duration) Option {
	return func(p *policy) { p.delay = d }
}

// WithLogger sets the logger that records absorbed errors.
func WithLogger(log zerolog.Logger) Option {
	return func(p *policy) { p.log = log }
}

// Run attempts call and returns its result when it succeeds and valid
// accepts the payload shape. Otherwise the error is logged, the simulated
// delay elapses, and generate's fixture is returned. generate must be a
// pure function of the request parameters captured in its closure. The only
// error Run itself returns is ctx cancellation during the delay.
func Run[T any](ctx context.Context, call func(context.Context) (T, error), generate func() T, valid func(T) bool, options ...Option) (T, error) {
	p := policy{delay: DefaultDelay, log: zerolog.Nop()}
	for _, opt := range options {
		opt(&p)
	}

	result, err := call(ctx)
	if err == nil && valid(result) {
		return result, nil
	}

	if err != nil {
		p.log.Warn().Err(err).Msg("network call failed, serving fallback")
	} else {
		p.log.Warn().Msg("response failed shape check, serving fallback")
	}

	if err := Sleep(ctx, p.delay); err != nil {
		var zero T
		return zero, err
	}
	return generate(), nil
}

// Sleep waits for the simulated fallback delay, honouring ctx cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
