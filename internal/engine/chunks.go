package engine

import (
	"errors"
	"fmt"
	"sort"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/constants"
	"chunkwise/internal/guard"
	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

// ChunkDraft is the caller-supplied shape of a new chunk, used both for
// single creation and for split parts.
type ChunkDraft struct {
	Title       string
	DoD         string
	DurationMin int
	Tags        []string
	Status      models.ChunkStatus // defaults to backlog
}

type UpdateChunkInput struct {
	Title       *string
	DoD         *string
	DurationMin *int
	Tags        *[]string
}

// ReadyChunk is a schedulable chunk joined with its area and intention
// context, the shape the planner ranks on.
type ReadyChunk struct {
	models.Chunk
	AreaTitle      string
	AreaWeight     int
	AreaHealth     models.AreaHealth
	IntentionTitle string
}

// SplitResult carries the replacement chunks plus a non-fatal warning when
// the parts' total duration drifts from the original.
type SplitResult struct {
	Original  models.Chunk
	NewChunks []models.Chunk
	Warning   string
}

func validateDraft(d ChunkDraft) error {
	if err := guard.CheckTitle(d.Title); err != nil {
		return err
	}
	if err := guard.CheckDoD(d.DoD); err != nil {
		return err
	}
	return guard.CheckDuration(d.DurationMin)
}

func (e *Engine) CreateChunk(owner, intentionID string, draft ChunkDraft) (models.Chunk, error) {
	if err := validateDraft(draft); err != nil {
		return models.Chunk{}, err
	}
	status := draft.Status
	if status == "" {
		status = models.ChunkStatusBacklog
	}
	if status != models.ChunkStatusBacklog && status != models.ChunkStatusReady {
		return models.Chunk{}, apperrors.Validationf("new chunks start as backlog or ready, not %q", status)
	}

	var created models.Chunk
	err := e.store.Transact(func(s storage.Store) error {
		intention, err := getOwnedIntention(s, owner, intentionID)
		if err != nil {
			return err
		}
		created = models.Chunk{
			ID:          e.newID(),
			OwnerID:     owner,
			AreaID:      intention.AreaID,
			IntentionID: intention.ID,
			Title:       draft.Title,
			DoD:         draft.DoD,
			DurationMin: draft.DurationMin,
			Tags:        draft.Tags,
			Status:      status,
			CreatedAt:   e.now(),
		}
		return s.PutChunk(created)
	})
	if err != nil {
		return models.Chunk{}, err
	}
	return created, nil
}

// CreateChunkBatch creates several chunks under one intention atomically.
// Validation failures name the offending draft and abort the whole batch.
func (e *Engine) CreateChunkBatch(owner, intentionID string, drafts []ChunkDraft) ([]models.Chunk, error) {
	if len(drafts) == 0 {
		return nil, apperrors.Validationf("no chunks to create")
	}
	for i, d := range drafts {
		if err := validateDraft(d); err != nil {
			return nil, apperrors.Validationf("chunk %d (%q): %v", i+1, d.Title, err)
		}
		if d.Status != "" && d.Status != models.ChunkStatusBacklog && d.Status != models.ChunkStatusReady {
			return nil, apperrors.Validationf("chunk %d (%q): new chunks start as backlog or ready", i+1, d.Title)
		}
	}
	var created []models.Chunk
	err := e.store.Transact(func(s storage.Store) error {
		intention, err := getOwnedIntention(s, owner, intentionID)
		if err != nil {
			return err
		}
		now := e.now()
		for _, d := range drafts {
			status := d.Status
			if status == "" {
				status = models.ChunkStatusBacklog
			}
			c := models.Chunk{
				ID:          e.newID(),
				OwnerID:     owner,
				AreaID:      intention.AreaID,
				IntentionID: intention.ID,
				Title:       d.Title,
				DoD:         d.DoD,
				DurationMin: d.DurationMin,
				Tags:        d.Tags,
				Status:      status,
				CreatedAt:   now,
			}
			if err := s.PutChunk(c); err != nil {
				return err
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Engine) GetChunk(owner, id string) (models.Chunk, error) {
	return getOwnedChunk(e.store, owner, id)
}

// ListChunksByIntention returns an intention's chunks newest first,
// optionally filtered by status.
func (e *Engine) ListChunksByIntention(owner, intentionID string, status *models.ChunkStatus) ([]models.Chunk, error) {
	if _, err := getOwnedIntention(e.store, owner, intentionID); err != nil {
		return nil, err
	}
	chunks, err := e.store.ListChunksByIntention(intentionID)
	if err != nil {
		return nil, err
	}
	if status != nil {
		filtered := chunks[:0]
		for _, c := range chunks {
			if c.Status == *status {
				filtered = append(filtered, c)
			}
		}
		chunks = filtered
	}
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].CreatedAt.After(chunks[j].CreatedAt)
	})
	return chunks, nil
}

// ListReadyChunks returns every ready chunk of the owner joined with area
// and intention context, the candidate pool for day planning.
func (e *Engine) ListReadyChunks(owner string) ([]ReadyChunk, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return nil, err
	}
	chunks, err := e.store.ListChunksByOwnerStatus(owner, models.ChunkStatusReady)
	if err != nil {
		return nil, err
	}
	now := e.now()
	out := make([]ReadyChunk, 0, len(chunks))
	for _, c := range chunks {
		rc := ReadyChunk{Chunk: c}
		if a, err := e.store.GetArea(c.AreaID); err == nil {
			rc.AreaTitle = a.Title
			rc.AreaWeight = a.Weight
			rc.AreaHealth = guard.AreaHealth(a.LastTouchedAt, now)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if in, err := e.store.GetIntention(c.IntentionID); err == nil {
			rc.IntentionTitle = in.Title
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		out = append(out, rc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AreaWeight != out[j].AreaWeight {
			return out[i].AreaWeight > out[j].AreaWeight
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (e *Engine) UpdateChunk(owner, id string, in UpdateChunkInput) (models.Chunk, error) {
	var updated models.Chunk
	err := e.store.Transact(func(s storage.Store) error {
		chunk, err := getOwnedChunk(s, owner, id)
		if err != nil {
			return err
		}
		if in.Title != nil {
			if err := guard.CheckTitle(*in.Title); err != nil {
				return err
			}
			chunk.Title = *in.Title
		}
		if in.DoD != nil {
			if err := guard.CheckDoD(*in.DoD); err != nil {
				return err
			}
			chunk.DoD = *in.DoD
		}
		if in.DurationMin != nil {
			if err := guard.CheckDuration(*in.DurationMin); err != nil {
				return err
			}
			chunk.DurationMin = *in.DurationMin
		}
		if in.Tags != nil {
			chunk.Tags = *in.Tags
		}
		updated = chunk
		return s.PutChunk(chunk)
	})
	if err != nil {
		return models.Chunk{}, err
	}
	return updated, nil
}

// UpdateChunkStatus handles the transitions a caller may request directly:
// grooming between backlog and ready, and marking work done that happened
// off-plan. The inPlan and inProgress values are driven exclusively by day
// plan item operations and cannot be set here. done is terminal.
func (e *Engine) UpdateChunkStatus(owner, id string, status models.ChunkStatus) (models.Chunk, error) {
	switch status {
	case models.ChunkStatusBacklog, models.ChunkStatusReady, models.ChunkStatusDone:
	case models.ChunkStatusInPlan, models.ChunkStatusInProgress:
		return models.Chunk{}, apperrors.Validationf("status %q is set by day plan operations", status)
	default:
		return models.Chunk{}, apperrors.Validationf("invalid chunk status %q", status)
	}

	var updated models.Chunk
	err := e.store.Transact(func(s storage.Store) error {
		chunk, err := getOwnedChunk(s, owner, id)
		if err != nil {
			return err
		}
		if chunk.Status == status {
			updated = chunk
			return nil
		}
		if chunk.Status == models.ChunkStatusDone {
			return apperrors.Conflictf("chunk is done; split it to continue the work")
		}
		if chunk.Status == models.ChunkStatusInPlan || chunk.Status == models.ChunkStatusInProgress {
			open, err := chunkOpenElsewhere(s, chunk.ID)
			if err != nil {
				return err
			}
			// A chunk stranded by a closed plan may be freed by hand.
			if open {
				return apperrors.Conflictf("chunk is scheduled in an open day plan; remove it from the plan first")
			}
		}
		chunk.Status = status
		if status == models.ChunkStatusDone {
			now := e.now()
			chunk.CompletedAt = &now
			if err := touchArea(s, chunk.AreaID, now); err != nil {
				return err
			}
		}
		updated = chunk
		return s.PutChunk(chunk)
	})
	if err != nil {
		return models.Chunk{}, err
	}
	return updated, nil
}

// DeleteChunk removes the chunk and any items referencing it in open plans.
// Items in completed or expired plans stay as history.
func (e *Engine) DeleteChunk(owner, id string) error {
	return e.store.Transact(func(s storage.Store) error {
		chunk, err := getOwnedChunk(s, owner, id)
		if err != nil {
			return err
		}
		return deleteChunkCascade(s, chunk.ID)
	})
}

func deleteChunkCascade(s storage.Store, chunkID string) error {
	items, err := s.ListItemsByChunk(chunkID)
	if err != nil {
		return err
	}
	for _, it := range items {
		plan, err := s.GetPlan(it.DayPlanID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if err == nil && !plan.Open() {
			continue
		}
		if err := s.DeleteItem(it.ID); err != nil {
			return err
		}
	}
	return s.DeleteChunk(chunkID)
}

// SplitChunk replaces one mis-sized chunk with two or more right-sized ones.
// The original is marked done (it no longer represents pending work), the
// parts start ready, and an append-only split record preserves the lineage.
// A total-duration drift beyond the variance threshold yields a warning but
// does not block the split.
func (e *Engine) SplitChunk(owner, chunkID string, parts []ChunkDraft, reason string) (SplitResult, error) {
	if len(parts) < 2 {
		return SplitResult{}, apperrors.Validationf("a split needs at least 2 parts")
	}
	for i, p := range parts {
		if err := validateDraft(p); err != nil {
			return SplitResult{}, apperrors.Validationf("part %d (%q): %v", i+1, p.Title, err)
		}
	}

	var result SplitResult
	err := e.store.Transact(func(s storage.Store) error {
		chunk, err := getOwnedChunk(s, owner, chunkID)
		if err != nil {
			return err
		}
		if chunk.Status == models.ChunkStatusDone {
			return apperrors.Conflictf("chunk is already done")
		}
		open, err := chunkOpenElsewhere(s, chunk.ID)
		if err != nil {
			return err
		}
		if open {
			return apperrors.Conflictf("chunk is scheduled in an open day plan; remove it from the plan first")
		}

		now := e.now()
		newIDs := make([]string, 0, len(parts))
		newChunks := make([]models.Chunk, 0, len(parts))
		total := 0
		for _, p := range parts {
			tags := p.Tags
			if tags == nil {
				tags = chunk.Tags
			}
			nc := models.Chunk{
				ID:          e.newID(),
				OwnerID:     owner,
				AreaID:      chunk.AreaID,
				IntentionID: chunk.IntentionID,
				Title:       p.Title,
				DoD:         p.DoD,
				DurationMin: p.DurationMin,
				Tags:        tags,
				Status:      models.ChunkStatusReady,
				CreatedAt:   now,
			}
			if err := s.PutChunk(nc); err != nil {
				return err
			}
			newIDs = append(newIDs, nc.ID)
			newChunks = append(newChunks, nc)
			total += p.DurationMin
		}

		chunk.Status = models.ChunkStatusDone
		chunk.CompletedAt = &now
		if err := s.PutChunk(chunk); err != nil {
			return err
		}
		if err := touchArea(s, chunk.AreaID, now); err != nil {
			return err
		}
		if err := s.PutSplit(models.ChunkSplit{
			ID:              e.newID(),
			OwnerID:         owner,
			OriginalChunkID: chunk.ID,
			NewChunkIDs:     newIDs,
			Reason:          reason,
			CreatedAt:       now,
		}); err != nil {
			return err
		}

		result = SplitResult{Original: chunk, NewChunks: newChunks}
		lo := float64(chunk.DurationMin) * (1 - constants.SplitDurationVariance)
		hi := float64(chunk.DurationMin) * (1 + constants.SplitDurationVariance)
		if f := float64(total); f < lo || f > hi {
			result.Warning = fmt.Sprintf(
				"parts total %d min vs original %d min; more than %.0f%% apart",
				total, chunk.DurationMin, constants.SplitDurationVariance*100)
		}
		return nil
	})
	if err != nil {
		return SplitResult{}, err
	}
	return result, nil
}

// ListSplits returns the split records descending from the given chunk.
func (e *Engine) ListSplits(owner, chunkID string) ([]models.ChunkSplit, error) {
	if _, err := getOwnedChunk(e.store, owner, chunkID); err != nil {
		return nil, err
	}
	splits, err := e.store.ListSplitsByOriginal(chunkID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(splits, func(i, j int) bool {
		return splits[i].CreatedAt.Before(splits[j].CreatedAt)
	})
	return splits, nil
}
