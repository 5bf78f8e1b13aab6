package models

// BookingCounts holds appointment counts per time bucket.
type BookingCounts struct {
	Today int `json:"today"`
	Week  int `json:"week"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// DashboardStats is derived from appointments and expenses on every request.
// It is never persisted.
type DashboardStats struct {
	Revenue            float64       `json:"revenue"`
	Spending           float64       `json:"spending"`
	SpendingIsFallback bool          `json:"spending_is_fallback"`
	Profit             float64       `json:"profit"`
	TotalBookings      BookingCounts `json:"total_bookings"`
	AvgRevenuePerCut   int           `json:"avg_revenue_per_cut"`
	AvgProfitPerCut    int           `json:"avg_profit_per_cut"`
	MostCommonCut      string        `json:"most_common_cut"`
	SlowestDay         string        `json:"slowest_day"`
	BusiestDay         string        `json:"busiest_day"`
}
