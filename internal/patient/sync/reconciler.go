// Package sync is the boundary a sync worker uses to drain the offline
// queue: list what is pending, confirm what was pushed, compact the rest.
// Pushing to the remote, retries and batching belong to the caller.
package sync

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"healthreg/internal/patient/models"
	dErrors "healthreg/pkg/domain-errors"
)

// Queue is the slice of the offline queue the reconciler drives.
type Queue interface {
	ListUnsynced(ctx context.Context) ([]models.PatientRecord, error)
	MarkSynced(ctx context.Context, id string) error
	PruneSynced(ctx context.Context) (int, error)
}

type Reconciler struct {
	queue  Queue
	logger *zap.Logger
}

type Option func(*Reconciler)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(queue Queue, opts ...Option) *Reconciler {
	r := &Reconciler{queue: queue, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetPending returns queued records not yet confirmed, oldest first.
func (r *Reconciler) GetPending(ctx context.Context) ([]models.PatientRecord, error) {
	return r.queue.ListUnsynced(ctx)
}

// Confirm marks id as delivered. Unknown ids are ignored.
func (r *Reconciler) Confirm(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return dErrors.New(dErrors.CodeBadRequest, "record id is required")
	}
	if err := r.queue.MarkSynced(ctx, id); err != nil {
		return err
	}
	r.logger.Info("record confirmed synced", zap.String("record_id", id))
	return nil
}

// ConfirmAll drops every confirmed record from the queue and returns how
// many were removed.
func (r *Reconciler) ConfirmAll(ctx context.Context) (int, error) {
	removed, err := r.queue.PruneSynced(ctx)
	if err != nil {
		return 0, err
	}
	r.logger.Info("synced records pruned", zap.Int("removed", removed))
	return removed, nil
}
