package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/abgdnv/gocheckout/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher guards a Publisher with a circuit breaker, so a broker outage
// fails fast instead of stalling every checkout on publish timeouts.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher wraps next with a circuit breaker configured from cfg.
func NewBreakerPublisher(next Publisher, cfg config.CircuitBreakerConfig) *BreakerPublisher {
	st := gobreaker.Settings{
		Name:        "event-publisher-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			// payload encoding errors say nothing about broker health
			return err == nil || errors.Is(err, ErrEncodePayload)
		},
	}
	if st.Timeout <= 0 {
		st.Timeout = 5 * time.Second
	}
	return &BreakerPublisher{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](st)}
}

// ErrEncodePayload is returned by publishers when an event cannot be serialized.
var ErrEncodePayload = errors.New("failed to encode event payload")

// Publish forwards the event unless the breaker is open.
func (p *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	return err
}

// State returns the current breaker state.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}
