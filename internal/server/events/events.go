// Package events delivers committed ledger mutations to observers.
package events

import (
	"context"

	"github.com/dmitrijs2005/phoenixlocker/internal/logging"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
)

// Publisher receives events after the mutation they describe is committed.
// Publish must not block for long; it runs on the request path.
type Publisher interface {
	Publish(ctx context.Context, e models.Event)
}

// Fanout forwards every event to each publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e models.Event) {
	for _, p := range f {
		p.Publish(ctx, e)
	}
}

// LogPublisher writes one structured log line per event.
type LogPublisher struct {
	logger logging.Logger
}

func NewLogPublisher(logger logging.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("module", "events")}
}

func (p *LogPublisher) Publish(ctx context.Context, e models.Event) {
	args := []any{
		"event", string(e.Type),
		"id", e.ID.String(),
		"address", e.Address,
		"amount", e.Amount,
		"total_locked", e.TotalLocked,
	}
	if e.Cadence != nil {
		args = append(args, "cadence", e.Cadence.String())
	}
	p.logger.Info(ctx, "ledger event", args...)
}

// Recorder keeps every event in memory. Tests use it to observe emissions.
type Recorder struct {
	Events []models.Event
}

func (r *Recorder) Publish(_ context.Context, e models.Event) {
	r.Events = append(r.Events, e)
}
