package handoff

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_meals/internal/metrics"
)

// Scheduler runs f once after d. Scheduled work is not cancellable.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type TimeScheduler struct{}

func (TimeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Opener hands a URL to the external messaging service.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// LogOpener records the handoff. The visitor's browser follows the link
// itself; the server only keeps an audit line of it.
type LogOpener struct {
	Log *slog.Logger
}

func (o LogOpener) Open(ctx context.Context, url string) error {
	o.Log.InfoContext(ctx, "messaging handoff", "url", url)
	return nil
}

// Dispatcher schedules handoffs.
type Dispatcher struct {
	scheduler Scheduler
	opener    Opener
	metrics   *metrics.Metrics
	log       *slog.Logger
}

func NewDispatcher(s Scheduler, o Opener, m *metrics.Metrics, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{scheduler: s, opener: o, metrics: m, log: log}
}

// Schedule opens url after delay. The request context is not carried over:
// the handoff outlives the request that triggered it.
func (d *Dispatcher) Schedule(delay time.Duration, url string) {
	d.scheduler.AfterFunc(delay, func() {
		if err := d.opener.Open(context.Background(), url); err != nil {
			d.log.Warn("handoff failed", "error", err)
			return
		}
		d.metrics.Handoff()
	})
}
