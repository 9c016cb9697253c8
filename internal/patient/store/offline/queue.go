// Package offline is the device-local queue of registrations that have not
// reached the remote store. The whole queue is one JSON array under a single
// key of a kv.Store; every operation is a read-modify-write of that blob.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthreg/internal/patient/metrics"
	"healthreg/internal/patient/models"
	"healthreg/internal/storage/kv"
	dErrors "healthreg/pkg/domain-errors"
	"healthreg/pkg/platform/sentinel"
	"healthreg/pkg/requestcontext"
)

// DefaultKey is the storage key holding the queue.
const DefaultKey = "offline_patients"

// Queue is safe for concurrent use within one process.
type Queue struct {
	mu      sync.Mutex
	store   kv.Store
	key     string
	logger  *zap.Logger
	metrics *metrics.Metrics
	newID   func() string
}

type Option func(*Queue)

func WithLogger(logger *zap.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) {
		q.metrics = m
	}
}

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(q *Queue) {
		if key != "" {
			q.key = key
		}
	}
}

// WithIDGenerator replaces uuid.NewString for ids the caller left empty.
func WithIDGenerator(fn func() string) Option {
	return func(q *Queue) {
		if fn != nil {
			q.newID = fn
		}
	}
}

func New(store kv.Store, opts ...Option) *Queue {
	q := &Queue{
		store:  store,
		key:    DefaultKey,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Append stores reg as an unsynced record and returns its id. The creation
// time comes from the request clock. Appending an id that is already queued
// leaves the queue untouched and returns that id.
func (q *Queue) Append(ctx context.Context, reg models.Registration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load(ctx)
	if err != nil {
		return "", err
	}

	record := reg.ToRecord()
	if record.ID == "" {
		record.ID = q.newID()
	}
	for _, existing := range records {
		if existing.ID == record.ID {
			q.logger.Info("record already queued",
				zap.String("record_id", record.ID),
				zap.Bool("synced", existing.Synced),
			)
			return existing.ID, nil
		}
	}
	record.Synced = false
	record.CreatedAt = requestcontext.Now(ctx).UTC()

	records = append(records, record)
	if err := q.save(ctx, records); err != nil {
		return "", err
	}
	q.logger.Info("record queued offline",
		zap.String("record_id", record.ID),
		zap.Int("queue_len", len(records)),
	)
	return record.ID, nil
}

// ListAll returns every record in insertion order.
func (q *Queue) ListAll(ctx context.Context) ([]models.PatientRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// ListUnsynced returns records with Synced == false in insertion order.
func (q *Queue) ListUnsynced(ctx context.Context) ([]models.PatientRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load(ctx)
	if err != nil {
		return nil, err
	}
	return unsynced(records), nil
}

// MarkSynced flags the record with id as synced. Unknown ids and records
// already synced leave the queue untouched.
func (q *Queue) MarkSynced(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range records {
		if records[i].ID == id && !records[i].Synced {
			records[i].Synced = true
			changed = true
		}
	}
	if !changed {
		q.logger.Debug("mark synced: nothing to change", zap.String("record_id", id))
		return nil
	}
	return q.save(ctx, records)
}

// PruneSynced drops every synced record, preserving order of the rest.
func (q *Queue) PruneSynced(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := unsynced(records)
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := q.save(ctx, kept); err != nil {
		return 0, err
	}
	q.logger.Info("pruned synced records", zap.Int("removed", removed), zap.Int("remaining", len(kept)))
	return removed, nil
}

// load must be called with q.mu held. A missing or undecodable blob is an
// empty queue; only a backend failure is returned.
func (q *Queue) load(ctx context.Context) ([]models.PatientRecord, error) {
	blob, err := q.store.Get(ctx, q.key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return []models.PatientRecord{}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "read offline queue")
	}

	var records []models.PatientRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		q.metrics.IncrementCorrupt()
		q.logger.Warn("offline queue unreadable, treating as empty",
			zap.String("key", q.key),
			zap.String("code", string(dErrors.CodeStorageCorrupt)),
			zap.Error(fmt.Errorf("%w: %v", sentinel.ErrCorrupt, err)),
		)
		return []models.PatientRecord{}, nil
	}
	if records == nil {
		records = []models.PatientRecord{}
	}
	q.metrics.SetPending(len(unsynced(records)))
	return records, nil
}

func (q *Queue) save(ctx context.Context, records []models.PatientRecord) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode offline queue")
	}
	if err := q.store.Put(ctx, q.key, blob); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "write offline queue")
	}
	q.metrics.SetPending(len(unsynced(records)))
	return nil
}

func unsynced(records []models.PatientRecord) []models.PatientRecord {
	out := make([]models.PatientRecord, 0, len(records))
	for _, r := range records {
		if !r.Synced {
			out = append(out, r)
		}
	}
	return out
}
