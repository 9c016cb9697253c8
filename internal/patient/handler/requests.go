package handler

import (
	"healthreg/internal/patient/models"
	dErrors "healthreg/pkg/domain-errors"
)

// RegisterPatientRequest is the body of POST /patients.
type RegisterPatientRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dob"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Contact     string `json:"contact,omitempty"`
	FamilyID    string `json:"familyId,omitempty"`
}

func (r RegisterPatientRequest) ToRegistration() models.Registration {
	return models.Registration{
		ID:          r.ID,
		Name:        r.Name,
		DateOfBirth: r.DateOfBirth,
		Gender:      models.Gender(r.Gender),
		Address:     r.Address,
		Contact:     r.Contact,
		FamilyID:    r.FamilyID,
	}
}

// SetConnectivityRequest is the body of PUT /connectivity.
type SetConnectivityRequest struct {
	Online *bool `json:"online"`
}

func (r SetConnectivityRequest) Validate() error {
	if r.Online == nil {
		return dErrors.New(dErrors.CodeValidation, "online is required")
	}
	return nil
}

// RegisterPatientResponse reports where the registration ended up.
type RegisterPatientResponse struct {
	ID          string         `json:"id"`
	Outcome     models.Outcome `json:"outcome"`
	Message     string         `json:"message"`
	RemoteError string         `json:"remote_error,omitempty"`
}

type ListPatientsResponse struct {
	Patients []models.PatientView `json:"patients"`
	Source   models.Source        `json:"source"`
	Degraded bool                 `json:"degraded"`
	Count    int                  `json:"count"`
}

type PendingResponse struct {
	Count   int                    `json:"count"`
	Records []models.PatientRecord `json:"records"`
}

type PruneResponse struct {
	Removed int `json:"removed"`
}
