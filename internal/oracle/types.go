// Package oracle is the boundary to the external suggestion model. It builds
// the prompts, decodes responses into untrusted payload structs, and
// validates every field before anything reaches the engine. Nothing in this
// package writes to storage.
package oracle

import "chunkwise/internal/models"

// ChunkSuggestion is one proposed chunk from the oracle, either an extracted
// chunk or a split part. Untrusted until validated.
type ChunkSuggestion struct {
	Title       string   `json:"title"`
	DoD         string   `json:"dod"`
	DurationMin int      `json:"durationMin"`
	Tags        []string `json:"tags"`
}

// ExistingChunk is the minimal context the extract prompt lists so the model
// avoids duplicates.
type ExistingChunk struct {
	Title string
	DoD   string
}

type ExtractChunksRequest struct {
	AreaTitle            string
	IntentionTitle       string
	IntentionDescription string
	ExistingChunks       []ExistingChunk
}

type ExtractChunksResponse struct {
	Chunks    []ChunkSuggestion `json:"chunks"`
	Reasoning string            `json:"reasoning"`
}

// CandidateChunk is one schedulable chunk presented to the plan-building
// prompt, with the context the model ranks on.
type CandidateChunk struct {
	ChunkID        string
	Title          string
	DurationMin    int
	Tags           []string
	AreaTitle      string
	AreaWeight     int
	IntentionTitle string
}

type BuildPlanRequest struct {
	TimeBudgetMin  int
	EnergyMode     models.EnergyMode
	MaxTasks       int
	Candidates     []CandidateChunk
	LockedChunkIDs []string
}

type SuggestedItem struct {
	ChunkID   string `json:"chunkId"`
	Order     int    `json:"order"`
	Reasoning string `json:"reasoning"`
}

type BuildPlanResponse struct {
	SuggestedItems []SuggestedItem `json:"suggestedItems"`
	TotalDuration  int             `json:"totalDuration"`
	Reasoning      string          `json:"reasoning"`
	EnergyBalance  string          `json:"energyBalance"`
}

type SplitChunkRequest struct {
	ChunkTitle          string
	ChunkDoD            string
	OriginalDurationMin int
	TargetDurationMin   int
	Tags                []string
}

type SplitChunkResponse struct {
	Parts     []ChunkSuggestion `json:"parts"`
	Reasoning string            `json:"reasoning"`
}
