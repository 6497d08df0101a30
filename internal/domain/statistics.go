package domain

// DateLayout is the layout of LastVisitDate: a local calendar day.
const DateLayout = "2006-01-02"

// VisitStatistics are the counters derived from visits. They are persisted
// separately from the structures for fast access.
type VisitStatistics struct {
	TotalVisitedCount         int    `json:"total_visited_count"`
	DistinctDayCount          int    `json:"distinct_day_count"`
	AllStructuresVisitedCount int    `json:"all_structures_visited_count"`
	LastVisitDate             string `json:"last_visit_date,omitempty"`
}

// ResetVisits clears the counters of the current visit cycle.
// AllStructuresVisitedCount counts completed cycles and survives.
func (s *VisitStatistics) ResetVisits() {
	s.TotalVisitedCount = 0
	s.DistinctDayCount = 0
	s.LastVisitDate = ""
}
