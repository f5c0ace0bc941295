// Package service buffers usage events and flushes them in batches
package service

import (
	"context"
	"time"

	"medner/internal/platform/logger"
	"medner/internal/services/analytics/domain"

	"github.com/google/uuid"
)

// Options controls buffering and flushing
type Options struct {
	BufferSize int           // queued events before drops (default 1024)
	BatchSize  int           // max events per insert (default 128)
	FlushEvery time.Duration // flush cadence (default 2s)
}

// Svc implements domain.ServicePort
type Svc struct {
	w    domain.WriterPort
	cfg  Options
	buf  chan domain.Event
	log  *logger.Logger
	drop func() // test seam, called when an event is dropped
}

// New creates the analytics service
func New(w domain.WriterPort, cfg Options) *Svc {
	if w == nil {
		panic("analytics.Service requires a non nil WriterPort")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 128
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}
	return &Svc{
		w:   w,
		cfg: cfg,
		buf: make(chan domain.Event, cfg.BufferSize),
		log: logger.Named("analytics"),
	}
}

// Record implements domain.ServicePort. It never blocks the caller
func (s *Svc) Record(_ context.Context, ev domain.Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case s.buf <- ev:
	default:
		if s.drop != nil {
			s.drop()
		}
		s.log.Warn().Str("endpoint", ev.Endpoint).Msg("analytics buffer full, dropping event")
	}
}

// Run drains the buffer until ctx is done. A final flush runs on shutdown
// with a short grace timeout
func (s *Svc) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.FlushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			s.flush(fctx)
			cancel()
			return ctx.Err()
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

// flush drains up to BatchSize events per insert until the buffer is empty
func (s *Svc) flush(ctx context.Context) {
	for {
		batch := s.take()
		if len(batch) == 0 {
			return
		}
		if err := s.w.WriteBatch(ctx, batch); err != nil {
			s.log.Error().Err(err).Int("events", len(batch)).Msg("analytics write failed")
			return
		}
	}
}

func (s *Svc) take() []domain.Event {
	var out []domain.Event
	for len(out) < s.cfg.BatchSize {
		select {
		case ev := <-s.buf:
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}
