package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"healthreg/internal/patient/models"
	"healthreg/pkg/requestcontext"
)

// Reader lists patients from whichever path is active and normalizes both
// record shapes into models.PatientView.
type Reader struct {
	remote RemoteRecordService
	queue  OfflineQueue
	conn   Connectivity
	config
}

// NewReader builds a Reader. remote may be nil, in which case every list is
// served from the offline queue.
func NewReader(remote RemoteRecordService, queue OfflineQueue, conn Connectivity, opts ...Option) *Reader {
	return &Reader{
		remote: remote,
		queue:  queue,
		conn:   conn,
		config: newConfig(opts),
	}
}

// List never fails on transport errors. A remote failure serves the local
// queue for this call only and leaves the connectivity signal alone; a local
// backend failure yields an empty list.
func (r *Reader) List(ctx context.Context) (models.ListResult, error) {
	ctx, span := r.tracer.Start(ctx, "patient.list")
	defer span.End()

	now := requestcontext.Now(ctx)
	degraded := false

	if r.conn.IsOnline() && r.remote != nil {
		start := time.Now()
		rows, err := r.remote.QueryAll(ctx)
		r.metrics.ObserveRemote("query", err, time.Since(start))
		if err == nil {
			views := make([]models.PatientView, 0, len(rows))
			for _, row := range rows {
				views = append(views, remoteToView(row, now))
			}
			r.metrics.IncrementRead(string(models.SourceRemote), false)
			span.SetAttributes(
				attribute.String("patient.source", string(models.SourceRemote)),
				attribute.Int("patient.count", len(views)),
			)
			return models.ListResult{Patients: views, Source: models.SourceRemote}, nil
		}
		degraded = true
		span.RecordError(err)
		r.logger.Warn("remote query failed, serving offline queue",
			zap.String("request_id", requestcontext.RequestID(ctx)),
			zap.Error(err),
		)
	}

	records, err := r.queue.ListAll(ctx)
	if err != nil {
		r.logger.Error("offline queue read failed, serving empty list",
			zap.String("request_id", requestcontext.RequestID(ctx)),
			zap.Error(err),
		)
		records = nil
	}
	views := make([]models.PatientView, 0, len(records))
	for _, rec := range records {
		views = append(views, localToView(rec, now))
	}
	r.metrics.IncrementRead(string(models.SourceLocal), degraded)
	span.SetAttributes(
		attribute.String("patient.source", string(models.SourceLocal)),
		attribute.Bool("patient.degraded", degraded),
		attribute.Int("patient.count", len(views)),
	)
	return models.ListResult{Patients: views, Source: models.SourceLocal, Degraded: degraded}, nil
}
