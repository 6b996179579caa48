package models

// Report is the analytics response. JSON names are part of the public API.
type Report struct {
	StatusBreakdown              StatusBreakdown                 `json:"statusBreakdown"`
	GrievanceTypeBreakdown       map[string]*ResolutionSplit     `json:"grievanceTypeBreakdown"`
	AnonymityBreakdown           AnonymityBreakdown              `json:"anonymityBreakdown"`
	ClosureRate                  ClosureRate                     `json:"closureRate"`
	AvgResponseTimes             map[string]float64              `json:"avgResponseTimes"`
	PriorityRatings              map[string]*PriorityCounts      `json:"priorityRatings"`
	DepartmentGrievanceBreakdown map[string]*DepartmentBreakdown `json:"departmentGrievanceBreakdown"`
	TotalGrievances              int                             `json:"totalGrievances"`
}

// StatusBreakdown buckets by literal status. Completed is the bucket for the
// Resolved status; a Completed status lands in no bucket.
type StatusBreakdown struct {
	Reported   int `json:"reported"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

type ResolutionSplit struct {
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
}

type AnonymityBreakdown struct {
	Anonymous    int `json:"anonymous"`
	NonAnonymous int `json:"nonAnonymous"`
}

type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

type DepartmentBreakdown struct {
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
}

// ClosureRate is labelled with the month it was computed in; it is not
// filtered to that month.
type ClosureRate struct {
	Month       int     `json:"month"`
	ClosureRate float64 `json:"closureRate"`
}
