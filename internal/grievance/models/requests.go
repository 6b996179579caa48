package models

import (
	"errors"
	"strings"
)

// CreateGrievanceRequest is the intake payload. Anonymity is a pointer so an
// omitted field is distinguishable from false.
type CreateGrievanceRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Department        string `json:"department"`
	Anonymity         *bool  `json:"anonymity"`
	ContactIdentifier string `json:"contactNumber"`
}

func (r *CreateGrievanceRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Department = strings.TrimSpace(r.Department)
	r.ContactIdentifier = strings.TrimSpace(r.ContactIdentifier)
}

func (r *CreateGrievanceRequest) Validate() error {
	var missing []string
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if r.Description == "" {
		missing = append(missing, "description")
	}
	if r.Department == "" {
		missing = append(missing, "department")
	}
	if r.Anonymity == nil {
		missing = append(missing, "anonymity")
	}
	if r.ContactIdentifier == "" {
		missing = append(missing, "contactNumber")
	}
	if len(missing) > 0 {
		return errors.New("required fields are missing: " + strings.Join(missing, ", "))
	}
	return nil
}

// CreateGrievanceResult is returned from intake with the classifier-derived fields.
type CreateGrievanceResult struct {
	ID            string   `json:"id"`
	Priority      Priority `json:"priority"`
	GrievanceType string   `json:"grievanceType"`
	Category      string   `json:"category"`
	Message       string   `json:"message"`
}

type UpdateStatusRequest struct {
	GrievanceID string `json:"grievanceId"`
	Status      string `json:"status"`
}

type UpdateStatusResponse struct {
	Message string `json:"message"`
}
