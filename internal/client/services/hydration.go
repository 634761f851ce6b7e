package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/google/uuid"
)

const DefaultHydrationGoalML = 2000

// QuickAmounts are the one-tap intake sizes, in millilitres.
var QuickAmounts = []int{200, 250, 300}

// HydrationTracker keeps a running total of today's intake for one
// profile. The total is loaded from the backend and then incremented
// locally after each successful log.
type HydrationTracker struct {
	data      DataService
	profileID uuid.UUID
	goalML    int

	mu    sync.Mutex
	total int
}

// NewHydrationTracker uses DefaultHydrationGoalML when goalML is zero.
func NewHydrationTracker(data DataService, profileID uuid.UUID, goalML int) *HydrationTracker {
	if goalML == 0 {
		goalML = DefaultHydrationGoalML
	}
	return &HydrationTracker{data: data, profileID: profileID, goalML: goalML}
}

// Load replaces the running total with the backend's figure for today.
func (h *HydrationTracker) Load(ctx context.Context, sess *models.Session) (int, error) {
	today, err := h.data.GetTodayHydration(ctx, sess, h.profileID)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.total = today.Total
	return h.total, nil
}

// Log records amountML and adds it to the total once the backend accepted
// it. A failed log leaves the total unchanged.
func (h *HydrationTracker) Log(ctx context.Context, sess *models.Session, amountML int) (int, error) {
	if _, err := h.data.LogWaterIntake(ctx, sess, h.profileID, amountML); err != nil {
		return h.Total(), err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.total += amountML
	return h.total, nil
}

func (h *HydrationTracker) Total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

func (h *HydrationTracker) Goal() int {
	return h.goalML
}

// Percentage is the share of the goal reached, capped at 100. A
// non-positive goal yields 0.
func (h *HydrationTracker) Percentage() float64 {
	if h.goalML <= 0 {
		return 0
	}
	p := float64(h.Total()) / float64(h.goalML) * 100
	if p > 100 {
		return 100
	}
	return p
}
