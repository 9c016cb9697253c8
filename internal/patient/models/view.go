package models

// Source names the path a view was read from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// PatientView is the single display shape produced by the read path.
// It is derived on every read and never persisted.
type PatientView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       *int   `json:"age"`
	Gender    Gender `json:"gender"`
	Village   string `json:"village"`
	Address   string `json:"address"`
	LastVisit string `json:"lastVisit,omitempty"`
	Status    Status `json:"status"`
	Source    Source `json:"source"`
	Synced    bool   `json:"synced"`
}

// ListResult is the outcome of a read. Degraded is set when the remote was
// selected but failed and the local queue was served instead.
type ListResult struct {
	Patients []PatientView `json:"patients"`
	Source   Source        `json:"source"`
	Degraded bool          `json:"degraded"`
}
