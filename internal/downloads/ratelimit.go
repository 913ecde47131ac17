package downloads

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	minRequestInterval = 10 * time.Millisecond
	maxRequestInterval = time.Second
)

// RequestPacer enforces a minimum spacing between remote requests across
// the whole batch, regardless of how many workers are in flight.
type RequestPacer struct {
	lim *rate.Limiter
}

// NewRequestPacer clamps interval into [10ms, 1s] and allows no bursting,
// so consecutive grants are always at least one interval apart.
func NewRequestPacer(interval time.Duration) *RequestPacer {
	if interval < minRequestInterval {
		interval = minRequestInterval
	}
	if interval > maxRequestInterval {
		interval = maxRequestInterval
	}
	return &RequestPacer{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request slot or the context is done.
func (p *RequestPacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}
