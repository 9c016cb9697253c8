package service

import (
	"strings"

	"healthreg/internal/patient/models"
)

// Filter keeps views whose name or village contains query, ignoring case.
// An empty query returns views unchanged.
func Filter(views []models.PatientView, query string) []models.PatientView {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return views
	}
	out := make([]models.PatientView, 0, len(views))
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Name), q) || strings.Contains(strings.ToLower(v.Village), q) {
			out = append(out, v)
		}
	}
	return out
}
