// Package analytics aggregates the full grievance set into a report in one pass.
package analytics

import (
	"time"

	"civicdesk/internal/grievance/models"
)

const unknown = "Unknown"

// Compute builds the report from a snapshot of records. It is O(n) and keeps
// no state between calls. now supplies the closure-rate month label.
//
// Resolution is judged differently per dimension: the status breakdown's
// "completed" bucket and the department breakdown count status Resolved,
// while the grievance-type breakdown counts status Completed.
func Compute(records []*models.Grievance, now time.Time) *models.Report {
	r := &models.Report{
		GrievanceTypeBreakdown:       map[string]*models.ResolutionSplit{},
		AvgResponseTimes:             map[string]float64{},
		PriorityRatings:              map[string]*models.PriorityCounts{},
		DepartmentGrievanceBreakdown: map[string]*models.DepartmentBreakdown{},
	}

	type latency struct {
		sum   float64
		count int
	}
	latencies := map[string]*latency{}

	for _, g := range records {
		if g == nil {
			continue
		}
		r.TotalGrievances++

		switch g.Status {
		case models.StatusNew:
			r.StatusBreakdown.Reported++
		case models.StatusOpen:
			r.StatusBreakdown.Open++
		case models.StatusInProgress:
			r.StatusBreakdown.InProgress++
		case models.StatusResolved:
			r.StatusBreakdown.Completed++
		}

		gType := orUnknown(g.GrievanceType)
		split := r.GrievanceTypeBreakdown[gType]
		if split == nil {
			split = &models.ResolutionSplit{}
			r.GrievanceTypeBreakdown[gType] = split
		}
		if g.Status == models.StatusCompleted {
			split.Resolved++
		} else {
			split.Pending++
		}

		if g.Anonymity {
			r.AnonymityBreakdown.Anonymous++
		} else {
			r.AnonymityBreakdown.NonAnonymous++
		}

		dept := orUnknown(g.Department)
		ratings := r.PriorityRatings[dept]
		if ratings == nil {
			ratings = &models.PriorityCounts{}
			r.PriorityRatings[dept] = ratings
		}
		switch g.Priority {
		case models.PriorityLow:
			ratings.Low++
		case models.PriorityMedium:
			ratings.Medium++
		case models.PriorityHigh:
			ratings.High++
		}

		breakdown := r.DepartmentGrievanceBreakdown[dept]
		if breakdown == nil {
			breakdown = &models.DepartmentBreakdown{}
			r.DepartmentGrievanceBreakdown[dept] = breakdown
		}
		breakdown.Total++
		if g.Status == models.StatusResolved {
			breakdown.Resolved++
		} else {
			breakdown.Pending++
		}

		if g.ResolvedAt != nil && !g.CreatedAt.IsZero() {
			l := latencies[dept]
			if l == nil {
				l = &latency{}
				latencies[dept] = l
			}
			l.sum += g.ResolvedAt.Sub(g.CreatedAt).Seconds()
			l.count++
		}
	}

	for dept, l := range latencies {
		r.AvgResponseTimes[dept] = l.sum / float64(l.count)
	}

	r.ClosureRate.Month = int(now.Month())
	if r.TotalGrievances > 0 {
		r.ClosureRate.ClosureRate = float64(r.StatusBreakdown.Completed) / float64(r.TotalGrievances)
	}
	return r
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
