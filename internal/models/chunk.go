package models

import "time"

type ChunkStatus string

const (
	ChunkStatusBacklog    ChunkStatus = "backlog"
	ChunkStatusReady      ChunkStatus = "ready"
	ChunkStatusInPlan     ChunkStatus = "inPlan"
	ChunkStatusInProgress ChunkStatus = "inProgress"
	ChunkStatusDone       ChunkStatus = "done"
)

// Chunk is a 30-120 minute executable unit of work scoped to one Intention.
// Chunk status is the canonical scheduling signal: only ready chunks are
// eligible for a new day plan, and the engine keeps it consistent with the
// chunk's (at most one) open day plan item.
type Chunk struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	AreaID      string      `json:"area_id"`
	IntentionID string      `json:"intention_id"`
	Title       string      `json:"title"`
	DoD         string      `json:"dod"` // definition of done
	DurationMin int         `json:"duration_min"`
	Tags        []string    `json:"tags"`
	Status      ChunkStatus `json:"status"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ChunkSplit records the replacement of one mis-sized chunk with several
// right-sized ones. Append-only.
type ChunkSplit struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	OriginalChunkID string    `json:"original_chunk_id"`
	NewChunkIDs     []string  `json:"new_chunk_ids"`
	Reason          string    `json:"reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
