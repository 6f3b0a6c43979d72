package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	err   error
	calls int
}

func (f *failingStorage) Get(context.Context, string) ([]byte, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStorage) Set(context.Context, string, []byte) error {
	f.calls++
	return f.err
}

func (f *failingStorage) Delete(context.Context, string) error {
	f.calls++
	return f.err
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &failingStorage{err: errors.New("connection refused")}
	b := NewBreaker(next, BreakerSettings{Name: "test", ConsecutiveFails: 3, OpenTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := b.Set(ctx, "cart", []byte("x"))
		require.ErrorContains(t, err, "connection refused")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Get(ctx, "cart")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls, "open breaker must not reach the backend")
}

func TestBreaker_MissesDoNotTrip(t *testing.T) {
	next := &failingStorage{err: ErrNotFound}
	b := NewBreaker(next, BreakerSettings{Name: "test", ConsecutiveFails: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := b.Get(ctx, "cart")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_PassesThrough(t *testing.T) {
	b := NewBreaker(NewMemoryStore(), BreakerSettings{Name: "test"})
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "k", []byte("v")))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	require.NoError(t, b.Delete(ctx, "k"))
}
