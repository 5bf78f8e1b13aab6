package models

import "time"

// ServiceCount pairs a service name with how often it was booked.
type ServiceCount struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

// AIInsightsSummary is the business-performance summary generated upstream.
type AIInsightsSummary struct {
	PerformanceScore int            `json:"performance_score"` // 0-100
	KeyInsights      []string       `json:"key_insights"`
	PeakHours        []string       `json:"peak_hours"`
	TopServices      []ServiceCount `json:"top_services"`
	RevenueThisWeek  float64        `json:"revenue_this_week"`
	Recommendations  []string       `json:"recommendations"`
	LastUpdated      time.Time      `json:"last_updated"`
	Status           string         `json:"status"` // e.g. "mock", "live"
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s *AIInsightsSummary) Clone() *AIInsightsSummary {
	if s == nil {
		return nil
	}
	c := *s
	c.KeyInsights = cloneStrings(s.KeyInsights)
	c.PeakHours = cloneStrings(s.PeakHours)
	c.Recommendations = cloneStrings(s.Recommendations)
	if s.TopServices != nil {
		c.TopServices = make([]ServiceCount, len(s.TopServices))
		copy(c.TopServices, s.TopServices)
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
