// Package metrics exposes ledger telemetry in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/logging"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "phoenixlocker"

// Ledger holds the ledger collectors. It also implements events.Publisher.
type Ledger struct {
	registry    *prometheus.Registry
	events      *prometheus.CounterVec
	volume      *prometheus.CounterVec
	totalLocked prometheus.Gauge
	rejections  *prometheus.CounterVec

	mu        sync.Mutex
	readTotal func(ctx context.Context) (uint64, error)
}

// NewLedger registers the collectors on a fresh registry.
func NewLedger() *Ledger {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Ledger{
		registry: reg,
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "ledger", Name: "events_total",
			Help: "Committed ledger mutations",
		}, []string{"type", "cadence"}),
		volume: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "ledger", Name: "volume_units_total",
			Help: "Token units moved by committed mutations",
		}, []string{"type"}),
		totalLocked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: "ledger", Name: "total_locked_units",
			Help: "Sum of remaining balances",
		}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "ledger", Name: "rejections_total",
			Help: "Ledger operations rejected before commit",
		}, []string{"op", "reason"}),
	}
}

// TrackTotal makes Publish refresh the total locked gauge from read instead
// of from the event. Events for different addresses can be published out of
// commit order; read always returns the latest committed total.
func (l *Ledger) TrackTotal(read func(ctx context.Context) (uint64, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readTotal = read
}

// Publish records a committed event.
func (l *Ledger) Publish(ctx context.Context, e models.Event) {
	cadence := ""
	if e.Cadence != nil {
		cadence = e.Cadence.String()
	}
	l.events.WithLabelValues(string(e.Type), cadence).Inc()
	l.volume.WithLabelValues(string(e.Type)).Add(float64(e.Amount))

	// Read and set under one lock so an older read never overwrites a newer one.
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readTotal == nil {
		l.totalLocked.Set(float64(e.TotalLocked))
		return
	}
	if v, err := l.readTotal(context.WithoutCancel(ctx)); err == nil {
		l.totalLocked.Set(float64(v))
	}
}

// SetTotalLocked seeds the gauge, e.g. after a restore.
func (l *Ledger) SetTotalLocked(v uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalLocked.Set(float64(v))
}

// Reject counts an operation that failed validation or settlement.
func (l *Ledger) Reject(op, reason string) {
	l.rejections.WithLabelValues(op, reason).Inc()
}

// Handler serves the registry.
func (l *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{Registry: l.registry})
}

// Server serves /metrics until its context ends.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

func NewServer(addr string, l *Ledger, logger logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", l.Handler())
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger.With("module", "metrics"),
	}
}

// Run listens until ctx is done, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "metrics server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info(ctx, "metrics server stopped")
		return nil
	}
}
