package models

import (
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority accepts only the exact closed-set literals.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

type Status string

const (
	StatusNew        Status = "New"
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In-Progress"
	StatusResolved   Status = "Resolved"
	StatusCompleted  Status = "Completed"
)

// ParseStatus accepts only the exact closed-set literals. Any status may
// follow any other; there is no transition graph.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNew, StatusOpen, StatusInProgress, StatusResolved, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

const (
	DefaultGrievanceType = "General"
	DefaultCategory      = "General"
)

// Grievance is one citizen-submitted record, keyed by the normalized contact
// identifier. Only Status, Resolved and ResolvedAt change after creation.
type Grievance struct {
	ID            string     `json:"id"`
	ContactNumber string     `json:"contactNumber"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Department    string     `json:"department"`
	Priority      Priority   `json:"priority"`
	GrievanceType string     `json:"grievanceType"`
	Category      string     `json:"category"`
	Anonymity     bool       `json:"anonymity"`
	Status        Status     `json:"status"`
	Resolved      bool       `json:"resolved"`
	CreatedAt     time.Time  `json:"createdAt"`
	ResolvedAt    *time.Time `json:"resolvedAt"`
}

// ApplyStatus overwrites the status. Only Resolved stamps resolved/resolvedAt;
// moving away from Resolved leaves both as they were.
func (g *Grievance) ApplyStatus(status Status, now time.Time) {
	g.Status = status
	if status == StatusResolved {
		g.Resolved = true
		at := now
		g.ResolvedAt = &at
	}
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (g *Grievance) Clone() *Grievance {
	if g == nil {
		return nil
	}
	c := *g
	if g.ResolvedAt != nil {
		at := *g.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}
