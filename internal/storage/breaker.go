package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker guards a backing Storage with a circuit breaker so a dead Redis
// fails requests fast instead of stalling every handler.
type Breaker struct {
	next Storage
	cb   *gobreaker.CircuitBreaker[[]byte]
}

type BreakerSettings struct {
	Name             string
	ConsecutiveFails uint32
	OpenTimeout      time.Duration
	Logger           *slog.Logger
}

func NewBreaker(next Storage, s BreakerSettings) *Breaker {
	if s.ConsecutiveFails == 0 {
		s.ConsecutiveFails = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 10 * time.Second
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("storage breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// a miss is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Get(ctx context.Context, key string) ([]byte, error) {
	return b.cb.Execute(func() ([]byte, error) {
		return b.next.Get(ctx, key)
	})
}

func (b *Breaker) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return err
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
