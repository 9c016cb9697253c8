package models

// Status is the care status shown on the patient list.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusFollowUp Status = "follow-up"
	StatusOverdue  Status = "overdue"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusHealthy, StatusFollowUp, StatusOverdue:
		return true
	}
	return false
}

// StatusOrDefault returns s, or healthy when s is nil or empty.
func StatusOrDefault(s *Status) Status {
	if s == nil || *s == "" {
		return StatusHealthy
	}
	return *s
}
