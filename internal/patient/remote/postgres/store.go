// Package postgres implements the remote patient collection directly over a
// SQL connection opened with the lib/pq or pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"healthreg/internal/patient/models"
	"healthreg/pkg/platform/sentinel"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store reads and writes the patients table.
type Store struct {
	db      *sql.DB
	table   string
	timeout time.Duration
}

type Option func(*Store)

// WithTable overrides the default "patients" table. Invalid identifiers are
// ignored.
func WithTable(table string) Option {
	return func(s *Store) {
		if identPattern.MatchString(table) {
			s.table = table
		}
	}
}

// WithTimeout bounds each statement. Zero leaves the caller's deadline alone.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, table: "patients"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	dob        DATE,
	gender     TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	contact    TEXT NOT NULL DEFAULT '',
	family_id  TEXT NOT NULL DEFAULT '',
	status     TEXT,
	last_visit DATE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, s.table))
	if err != nil {
		return fmt.Errorf("ensure %s schema: %w: %w", s.table, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, record models.RemoteRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	var status *string
	if record.Status != nil {
		v := string(*record.Status)
		status = &v
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, name, dob, gender, address, contact, family_id, status, last_visit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, s.table),
		id,
		record.Name,
		nullString(record.DateOfBirth),
		string(record.Gender),
		record.Address,
		record.Contact,
		record.FamilyID,
		nullString(status),
		nullString(record.LastVisit),
	)
	if err != nil {
		return fmt.Errorf("insert patient: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// QueryAll returns every row, newest first.
func (s *Store) QueryAll(ctx context.Context) ([]models.RemoteRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, name, dob, gender, address, contact, family_id, status, last_visit, created_at
		 FROM %s ORDER BY created_at DESC`, s.table))
	if err != nil {
		return nil, fmt.Errorf("query patients: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	out := []models.RemoteRecord{}
	for rows.Next() {
		var (
			r         models.RemoteRecord
			gender    string
			dob       sql.NullTime
			status    sql.NullString
			lastVisit sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Name, &dob, &gender, &r.Address, &r.Contact, &r.FamilyID, &status, &lastVisit, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan patient: %w: %w", sentinel.ErrUnavailable, err)
		}
		r.Gender = models.Gender(gender)
		if dob.Valid {
			v := dob.Time.Format(models.DateLayout)
			r.DateOfBirth = &v
		}
		if status.Valid {
			v := models.Status(status.String)
			r.Status = &v
		}
		if lastVisit.Valid {
			v := lastVisit.Time.Format(models.DateLayout)
			r.LastVisit = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w: %w", sentinel.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func nullString(v *string) sql.NullString {
	if v == nil || *v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
