package models

// DashboardSummary is the single row returned by get_dashboard_summary.
type DashboardSummary struct {
	HydrationTodayML    int     `json:"hydration_today_ml"`
	HydrationGoalML     int     `json:"hydration_goal_ml"`
	HydrationPercentage float64 `json:"hydration_percentage"`
	NextMedicationName  *string `json:"next_medication_name"`
	NextMedicationTime  *string `json:"next_medication_time"`
	MedicationsDueCount int     `json:"medications_due_count"`
	StreakDays          int     `json:"streak_days"`
}
