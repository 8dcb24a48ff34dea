package models

import "time"

type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusExpired   PlanStatus = "expired"
)

type EnergyMode string

const (
	EnergyModeDeep   EnergyMode = "deep"
	EnergyModeNormal EnergyMode = "normal"
	EnergyModeLight  EnergyMode = "light"
)

// DayPlan is a single calendar day's container of scheduled chunks. One plan
// per owner per date.
type DayPlan struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Date        string     `json:"date"`        // YYYY-MM-DD format
	TimeBudget  int        `json:"time_budget"` // minutes available
	EnergyMode  EnergyMode `json:"energy_mode"`
	Notes       string     `json:"notes,omitempty"`
	Status      PlanStatus `json:"status"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Open reports whether the plan still counts as open for the purpose of the
// one-open-item-per-chunk invariant.
func (p DayPlan) Open() bool {
	return p.Status == PlanStatusDraft || p.Status == PlanStatusActive
}

type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusInProgress ItemStatus = "inProgress"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusSkipped    ItemStatus = "skipped"
	ItemStatusMoved      ItemStatus = "moved"
)

// DayPlanItem links a chunk to a day plan with position, lock flag and
// execution status.
type DayPlanItem struct {
	ID                string     `json:"id"`
	DayPlanID         string     `json:"day_plan_id"`
	ChunkID           string     `json:"chunk_id"`
	Order             int        `json:"order"`
	Locked            bool       `json:"locked"` // exempt from automatic replacement
	Status            ItemStatus `json:"status"`
	AIReason          string     `json:"ai_reason,omitempty"`
	ActualDurationMin *int       `json:"actual_duration_min,omitempty"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

type PerceivedLoad string

const (
	LoadLight  PerceivedLoad = "light"
	LoadNormal PerceivedLoad = "normal"
	LoadHeavy  PerceivedLoad = "heavy"
)

// DayReview is the end-of-day reflection, created exactly once when a plan is
// completed.
type DayReview struct {
	ID            string        `json:"id"`
	DayPlanID     string        `json:"day_plan_id"`
	PerceivedLoad PerceivedLoad `json:"perceived_load"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
