package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for dob and last_visit.
const DateLayout = "2006-01-02"

// Gender is the recorded gender. The form offers Male, Female and Other but
// free text from older clients is kept as-is.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// PatientRecord is the canonical local form of a registration. JSON names
// follow the persisted offline_patients layout.
type PatientRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth string    `json:"dob"`
	Gender      Gender    `json:"gender"`
	Address     string    `json:"address"`
	Contact     string    `json:"contact"`
	FamilyID    string    `json:"familyId"`
	Synced      bool      `json:"synced"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Village is the first comma-separated segment of the address.
func (r PatientRecord) Village() string {
	return VillageOf(r.Address)
}

// VillageOf returns the trimmed first comma segment of address.
func VillageOf(address string) string {
	village, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(village)
}
