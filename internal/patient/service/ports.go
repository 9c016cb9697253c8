package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=Connectivity

import (
	"context"

	"healthreg/internal/patient/models"
)

// RemoteRecordService is the network-backed patient collection. Adapters
// wrap every transport failure (including timeouts) with
// sentinel.ErrUnavailable.
type RemoteRecordService interface {
	Insert(ctx context.Context, record models.RemoteRecord) error
	// QueryAll returns every remote record, newest first.
	QueryAll(ctx context.Context) ([]models.RemoteRecord, error)
}

// OfflineQueue is the device-local store of records awaiting sync.
type OfflineQueue interface {
	Append(ctx context.Context, reg models.Registration) (string, error)
	ListAll(ctx context.Context) ([]models.PatientRecord, error)
	ListUnsynced(ctx context.Context) ([]models.PatientRecord, error)
	MarkSynced(ctx context.Context, id string) error
	PruneSynced(ctx context.Context) (int, error)
}

// Connectivity is the advisory online signal read on every operation.
type Connectivity interface {
	IsOnline() bool
}
