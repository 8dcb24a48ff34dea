package oracle

import (
	"fmt"
	"strings"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/constants"
)

// Extracted-chunk count bounds the oracle must respect.
const (
	MinExtractedChunks = 3
	MaxExtractedChunks = 7
)

func checkSuggestion(label string, s *ChunkSuggestion) error {
	if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.DoD) == "" {
		return apperrors.OracleViolationf("%s is missing a title or definition of done", label)
	}
	if s.DurationMin < constants.MinChunkDurationMin || s.DurationMin > constants.MaxChunkDurationMin {
		return apperrors.OracleViolationf("%s has duration %dm, must be %d-%d",
			label, s.DurationMin, constants.MinChunkDurationMin, constants.MaxChunkDurationMin)
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return nil
}

// ValidateExtractResponse checks an extraction payload field by field and
// normalizes nil tag slices in place.
func ValidateExtractResponse(resp *ExtractChunksResponse) error {
	if resp == nil || resp.Chunks == nil {
		return apperrors.OracleViolationf("response is missing the chunks array")
	}
	if n := len(resp.Chunks); n < MinExtractedChunks || n > MaxExtractedChunks {
		return apperrors.OracleViolationf("got %d chunks, expected %d-%d",
			n, MinExtractedChunks, MaxExtractedChunks)
	}
	for i := range resp.Chunks {
		if err := checkSuggestion(fmt.Sprintf("chunk %d", i+1), &resp.Chunks[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePlanResponse checks a plan suggestion against the request it
// answers: only whitelisted chunk ids, no duplicates, the task ceiling, and
// every locked chunk present. A single missing locked chunk rejects the
// whole payload.
func ValidatePlanResponse(req BuildPlanRequest, resp *BuildPlanResponse) error {
	if resp == nil || resp.SuggestedItems == nil {
		return apperrors.OracleViolationf("response is missing the suggestedItems array")
	}
	maxTasks := req.MaxTasks
	if maxTasks <= 0 || maxTasks > constants.MaxPlanItems {
		maxTasks = constants.MaxPlanItems
	}
	if len(resp.SuggestedItems) > maxTasks {
		return apperrors.OracleViolationf("suggested %d items, limit is %d",
			len(resp.SuggestedItems), maxTasks)
	}

	valid := make(map[string]bool, len(req.Candidates))
	for _, c := range req.Candidates {
		valid[c.ChunkID] = true
	}
	seen := make(map[string]bool, len(resp.SuggestedItems))
	for _, item := range resp.SuggestedItems {
		if !valid[item.ChunkID] {
			return apperrors.OracleViolationf("suggested chunk id %s is not a candidate", item.ChunkID)
		}
		if seen[item.ChunkID] {
			return apperrors.OracleViolationf("chunk %s suggested twice", item.ChunkID)
		}
		seen[item.ChunkID] = true
	}
	for _, id := range req.LockedChunkIDs {
		if !seen[id] {
			return apperrors.OracleViolationf("locked chunk %s was dropped from the suggestion", id)
		}
	}
	return nil
}

// ValidateSplitRequest checks the caller-side split parameters before any
// prompt is built.
func ValidateSplitRequest(req SplitChunkRequest) error {
	if req.TargetDurationMin < constants.MinChunkDurationMin || req.TargetDurationMin > constants.MaxChunkDurationMin {
		return apperrors.Validationf("target duration must be between %d and %d minutes",
			constants.MinChunkDurationMin, constants.MaxChunkDurationMin)
	}
	if req.OriginalDurationMin <= req.TargetDurationMin {
		return apperrors.Validationf("original duration must be greater than the target duration")
	}
	return nil
}

// ValidateSplitResponse checks a split payload. The returned warning is
// non-empty when the parts' total duration drifts more than the tolerated
// variance from the original; the drift alone never rejects the payload.
func ValidateSplitResponse(originalDurationMin int, resp *SplitChunkResponse) (string, error) {
	if resp == nil || resp.Parts == nil {
		return "", apperrors.OracleViolationf("response is missing the parts array")
	}
	if len(resp.Parts) < 2 {
		return "", apperrors.OracleViolationf("a split must produce at least 2 parts, got %d", len(resp.Parts))
	}
	total := 0
	for i := range resp.Parts {
		if err := checkSuggestion(fmt.Sprintf("part %d", i+1), &resp.Parts[i]); err != nil {
			return "", err
		}
		total += resp.Parts[i].DurationMin
	}

	diff := total - originalDurationMin
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) > float64(originalDurationMin)*constants.SplitDurationVariance {
		return fmt.Sprintf("parts total %dm vs original %dm, more than %.0f%% apart",
			total, originalDurationMin, constants.SplitDurationVariance*100), nil
	}
	return "", nil
}
