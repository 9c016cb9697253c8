package service

import (
	"math"
	"time"

	"healthreg/internal/patient/models"
)

const (
	daysPerYear   = 365.25
	secondsPerDay = 24 * 60 * 60
)

// remoteToView normalizes a remote row. Rows on the remote are by definition
// synced.
func remoteToView(r models.RemoteRecord, now time.Time) models.PatientView {
	view := models.PatientView{
		ID:      r.ID,
		Name:    r.Name,
		Gender:  r.Gender,
		Village: models.VillageOf(r.Address),
		Address: r.Address,
		Status:  models.StatusOrDefault(r.Status),
		Source:  models.SourceRemote,
		Synced:  true,
	}
	if r.DateOfBirth != nil {
		view.Age = ageOn(*r.DateOfBirth, now)
	}
	if r.LastVisit != nil {
		view.LastVisit = normalizeDate(*r.LastVisit)
	}
	return view
}

// localToView normalizes a queued record. The queue carries no visit or
// status data, so the record counts as seen today and healthy.
func localToView(r models.PatientRecord, now time.Time) models.PatientView {
	return models.PatientView{
		ID:        r.ID,
		Name:      r.Name,
		Age:       ageOn(r.DateOfBirth, now),
		Gender:    r.Gender,
		Village:   r.Village(),
		Address:   r.Address,
		LastVisit: now.Format(models.DateLayout),
		Status:    models.StatusHealthy,
		Source:    models.SourceLocal,
		Synced:    r.Synced,
	}
}

// ageOn returns whole years between dob and now, counting a year as 365.25
// days. Unparseable or future dates yield nil. The span is taken from Unix
// seconds because time.Duration caps out near 292 years.
func ageOn(dob string, now time.Time) *int {
	born, ok := parseDate(dob)
	if !ok {
		return nil
	}
	days := float64(now.Unix()-born.Unix()) / secondsPerDay
	if days < 0 {
		return nil
	}
	age := int(math.Floor(days / daysPerYear))
	return &age
}

// parseDate accepts a calendar date or a full timestamp, as remote backends
// differ in how they render date columns.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func normalizeDate(s string) string {
	if t, ok := parseDate(s); ok {
		return t.Format(models.DateLayout)
	}
	return s
}
