package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, key-value backends and
// remote adapters return these (optionally wrapped) so services can translate
// them into domain outcomes.
//
//   - ErrNotFound: key or record does not exist in the backing store
//   - ErrUnavailable: remote service or backend temporarily unreachable
//   - ErrCorrupt: a persisted blob exists but cannot be decoded
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrCorrupt     = errors.New("corrupt")
)
