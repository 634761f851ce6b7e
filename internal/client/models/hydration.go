package models

import (
	"time"

	"github.com/google/uuid"
)

// HydrationLog is one append-only water intake entry.
type HydrationLog struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	AmountML  int       `json:"amount_ml"`
	LoggedAt  time.Time `json:"logged_at"`
	// LogDate is derived by the backend from LoggedAt (YYYY-MM-DD).
	LogDate   string    `json:"log_date"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHydrationLog is the insert payload for hydration_logs.
type NewHydrationLog struct {
	ProfileID uuid.UUID `json:"profile_id"`
	AmountML  int       `json:"amount_ml"`
}

// DailyHydration is the result of the "today" query.
type DailyHydration struct {
	Total int
	Logs  []HydrationLog
}

// SumAmounts adds up the amounts of logs. The result does not depend on
// their order.
func SumAmounts(logs []HydrationLog) int {
	total := 0
	for _, l := range logs {
		total += l.AmountML
	}
	return total
}
