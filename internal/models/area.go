package models

import "time"

type AreaStatus string

const (
	AreaStatusActive   AreaStatus = "active"
	AreaStatusPaused   AreaStatus = "paused"
	AreaStatusArchived AreaStatus = "archived"
)

type AreaHealth string

const (
	AreaHealthNormal    AreaHealth = "normal"
	AreaHealthNeglected AreaHealth = "neglected"
	// AreaHealthUrgent is defined in the schema but never produced by the
	// health derivation. Kept so stored values round-trip.
	AreaHealthUrgent AreaHealth = "urgent"
)

// Area represents a long-term domain of responsibility, the top of the
// containment hierarchy.
type Area struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Weight        int        `json:"weight"` // relative priority, 1-10
	Status        AreaStatus `json:"status"`
	Health        AreaHealth `json:"health"`
	LastTouchedAt time.Time  `json:"last_touched_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

type IntentionStatus string

const (
	IntentionStatusActive IntentionStatus = "active"
	IntentionStatusPaused IntentionStatus = "paused"
	IntentionStatusDone   IntentionStatus = "done"
)

// Intention is a near-term goal scoped to one Area. At most 3 intentions per
// area may be active at once.
type Intention struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	AreaID      string          `json:"area_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      IntentionStatus `json:"status"`
	Order       int             `json:"order"` // manual sort key within the area
	CreatedAt   time.Time       `json:"created_at"`
}
