package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"healthreg/internal/patient/models"
	dErrors "healthreg/pkg/domain-errors"
	"healthreg/pkg/requestcontext"
)

// Writer registers patients remote-first with an automatic fallback to the
// offline queue. Every accepted registration lands in exactly one place.
type Writer struct {
	mu     sync.Mutex
	remote RemoteRecordService
	queue  OfflineQueue
	conn   Connectivity
	config
}

// NewWriter builds a Writer. remote may be nil, in which case every
// registration is queued offline.
func NewWriter(remote RemoteRecordService, queue OfflineQueue, conn Connectivity, opts ...Option) *Writer {
	return &Writer{
		remote: remote,
		queue:  queue,
		conn:   conn,
		config: newConfig(opts),
	}
}

// Register validates reg and persists it. A validation failure is returned
// before anything is written. Remote failures are absorbed by the offline
// queue; only a failed local append is returned as an error.
func (w *Writer) Register(ctx context.Context, reg models.Registration) (models.WriteResult, error) {
	ctx, span := w.tracer.Start(ctx, "patient.register")
	defer span.End()

	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		w.metrics.IncrementWrite("rejected", false)
		span.SetStatus(codes.Error, "validation failed")
		return models.WriteResult{}, err
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var remoteErr error
	online := w.conn.IsOnline() && w.remote != nil
	span.SetAttributes(attribute.Bool("patient.online", online))

	if online {
		start := time.Now()
		err := w.remote.Insert(ctx, reg.ToRemote(requestcontext.Now(ctx)))
		w.metrics.ObserveRemote("insert", err, time.Since(start))
		if err == nil {
			w.metrics.IncrementWrite(string(models.OutcomeRemote), false)
			span.SetAttributes(attribute.String("patient.outcome", string(models.OutcomeRemote)))
			w.logger.Info("patient registered remotely",
				zap.String("record_id", reg.ID),
				zap.String("request_id", requestcontext.RequestID(ctx)),
			)
			return models.WriteResult{ID: reg.ID, Outcome: models.OutcomeRemote}, nil
		}
		remoteErr = dErrors.Wrap(err, dErrors.CodeRemoteUnavailable, "remote insert failed")
		span.RecordError(err)
		w.logger.Warn("remote insert failed, falling back to offline queue",
			zap.String("record_id", reg.ID),
			zap.String("request_id", requestcontext.RequestID(ctx)),
			zap.Error(err),
		)
	}

	id, err := w.queue.Append(ctx, reg)
	if err != nil {
		span.SetStatus(codes.Error, "offline append failed")
		w.logger.Error("offline append failed",
			zap.String("record_id", reg.ID),
			zap.NamedError("remote_error", remoteErr),
			zap.Error(err),
		)
		var coded *dErrors.Error
		if !errors.As(err, &coded) {
			err = dErrors.Wrap(err, dErrors.CodeStorage, "save registration offline")
		}
		return models.WriteResult{}, err
	}

	w.metrics.IncrementWrite(string(models.OutcomeOffline), remoteErr != nil)
	span.SetAttributes(attribute.String("patient.outcome", string(models.OutcomeOffline)))
	w.logger.Info("patient registered offline",
		zap.String("record_id", id),
		zap.Bool("fallback", remoteErr != nil),
		zap.String("request_id", requestcontext.RequestID(ctx)),
	)
	return models.WriteResult{ID: id, Outcome: models.OutcomeOffline, RemoteErr: remoteErr}, nil
}
