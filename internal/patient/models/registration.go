package models

import (
	"strings"
	"time"

	dErrors "healthreg/pkg/domain-errors"
)

// Registration is the payload of the registration form.
type Registration struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dob"`
	Gender      Gender `json:"gender"`
	Address     string `json:"address"`
	Contact     string `json:"contact,omitempty"`
	FamilyID    string `json:"familyId,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (r Registration) Normalize() Registration {
	return Registration{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		DateOfBirth: strings.TrimSpace(r.DateOfBirth),
		Gender:      Gender(strings.TrimSpace(string(r.Gender))),
		Address:     strings.TrimSpace(r.Address),
		Contact:     strings.TrimSpace(r.Contact),
		FamilyID:    strings.TrimSpace(r.FamilyID),
	}
}

// Validate checks the required fields. Contact length is left to the client.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(r.DateOfBirth) == "" {
		return dErrors.New(dErrors.CodeValidation, "dob is required")
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(r.DateOfBirth)); err != nil {
		return dErrors.New(dErrors.CodeValidation, "dob must be a calendar date in YYYY-MM-DD form")
	}
	if strings.TrimSpace(string(r.Gender)) == "" {
		return dErrors.New(dErrors.CodeValidation, "gender is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	return nil
}

// ToRecord builds the local form. Caller assigns ID and CreatedAt.
func (r Registration) ToRecord() PatientRecord {
	return PatientRecord{
		ID:          r.ID,
		Name:        r.Name,
		DateOfBirth: r.DateOfBirth,
		Gender:      r.Gender,
		Address:     r.Address,
		Contact:     r.Contact,
		FamilyID:    r.FamilyID,
	}
}

// ToRemote builds the remote insert with the default status and today's
// date as the last visit.
func (r Registration) ToRemote(now time.Time) RemoteRecord {
	dob := r.DateOfBirth
	status := StatusHealthy
	lastVisit := now.Format(DateLayout)
	return RemoteRecord{
		ID:          r.ID,
		Name:        r.Name,
		DateOfBirth: &dob,
		Gender:      r.Gender,
		Address:     r.Address,
		Contact:     r.Contact,
		FamilyID:    r.FamilyID,
		Status:      &status,
		LastVisit:   &lastVisit,
	}
}
