package models

// Outcome is where an accepted registration ended up.
type Outcome string

const (
	OutcomeRemote  Outcome = "remote"
	OutcomeOffline Outcome = "offline"
)

// WriteResult reports a completed registration. RemoteErr is set when the
// remote was tried and failed before the local fallback.
type WriteResult struct {
	ID        string  `json:"id,omitempty"`
	Outcome   Outcome `json:"outcome"`
	RemoteErr error   `json:"-"`
}

// Message is the operator-facing notice for the result.
func (r WriteResult) Message() string {
	switch {
	case r.Outcome == OutcomeRemote:
		return "Patient registered successfully!"
	case r.RemoteErr != nil:
		return "Couldn't save online, saved offline"
	default:
		return "Patient registered offline!"
	}
}
