package models

import "time"

// RemoteRecord is the row shape of the remote patients collection. The
// remote side may leave dob, status and last_visit empty.
type RemoteRecord struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	DateOfBirth *string   `json:"dob"`
	Gender      Gender    `json:"gender"`
	Address     string    `json:"address"`
	Contact     string    `json:"contact"`
	FamilyID    string    `json:"family_id"`
	Status      *Status   `json:"status"`
	LastVisit   *string   `json:"last_visit"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
