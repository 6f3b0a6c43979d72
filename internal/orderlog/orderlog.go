package orderlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/metrics"
	"github.com/fjod/go_meals/internal/storage"
)

// StorageKey holds the append-only list of order records of one profile.
const StorageKey = "customerDatabase"

// Sink accepts submitted order records. Records are never read back.
type Sink interface {
	Append(ctx context.Context, s storage.Storage, rec domain.OrderRecord) error
}

// KVSink appends records to the JSON array kept in the profile's storage.
type KVSink struct{}

func (KVSink) Append(ctx context.Context, s storage.Storage, rec domain.OrderRecord) error {
	var records []json.RawMessage

	raw, err := s.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read order log: %w", err)
	default:
		if err := json.Unmarshal(raw, &records); err != nil {
			return fmt.Errorf("unmarshal order log failed: %w", err)
		}
	}

	entry, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal order record failed: %w", err)
	}
	records = append(records, entry)

	out, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal order log failed: %w", err)
	}
	if err := s.Set(ctx, StorageKey, out); err != nil {
		return fmt.Errorf("write order log: %w", err)
	}
	return nil
}

// DefaultMirrorTimeout bounds one round of mirror writes.
const DefaultMirrorTimeout = 5 * time.Second

// FanOut keeps records in a primary sink and copies them to best-effort
// mirrors. Append only writes the primary; callers run Mirror once the
// submission that produced the record is committed.
type FanOut struct {
	Primary       Sink
	Mirrors       map[string]Sink
	MirrorTimeout time.Duration
	Metrics       *metrics.Metrics
	Log           *slog.Logger
}

func (f FanOut) Append(ctx context.Context, s storage.Storage, rec domain.OrderRecord) error {
	if err := f.Primary.Append(ctx, s, rec); err != nil {
		f.Metrics.OrderRecord("primary", "error")
		return err
	}
	f.Metrics.OrderRecord("primary", "ok")
	return nil
}

// Mirror copies rec to every mirror. It ignores the cancellation of ctx and
// runs under its own timeout instead; failures are logged and counted only.
func (f FanOut) Mirror(ctx context.Context, s storage.Storage, rec domain.OrderRecord) {
	if len(f.Mirrors) == 0 {
		return
	}

	timeout := f.MirrorTimeout
	if timeout <= 0 {
		timeout = DefaultMirrorTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	for name, m := range f.Mirrors {
		if err := m.Append(ctx, s, rec); err != nil {
			f.Metrics.OrderRecord(name, "error")
			if f.Log != nil {
				f.Log.WarnContext(ctx, "order record mirror failed", "sink", name, "order_id", rec.ID, "error", err)
			}
			continue
		}
		f.Metrics.OrderRecord(name, "ok")
	}
}
