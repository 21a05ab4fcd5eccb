package metrics

import (
	"context"

	"todays-meal/internal/shared"

	"go.uber.org/zap"
)

// Recorder fans each generation out to the SQLite store and the Prometheus
// collector. Either may be nil.
type Recorder struct {
	store     *Store
	collector *Collector
	logger    *zap.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store *Store, collector *Collector, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, collector: collector, logger: logger}
}

// RecordGeneration never fails the caller; store errors are only logged.
func (r *Recorder) RecordGeneration(ctx context.Context, meta shared.GenerationMeta) {
	if r.collector != nil {
		r.collector.Observe(meta)
	}
	if r.store == nil {
		return
	}
	// The caller's deadline may already have expired; the write should still land.
	if err := r.store.Record(context.WithoutCancel(ctx), FromMeta(meta)); err != nil {
		r.logger.Warn("failed to record generation metric",
			zap.String("op", meta.Operation),
			zap.Error(err),
		)
	}
}
