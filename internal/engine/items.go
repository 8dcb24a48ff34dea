package engine

import (
	"errors"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/guard"
	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

// ItemOrder is one entry of a reorder request.
type ItemOrder struct {
	ItemID string
	Order  int
}

func itemTerminal(status models.ItemStatus) bool {
	switch status {
	case models.ItemStatusCompleted, models.ItemStatusSkipped, models.ItemStatusMoved:
		return true
	}
	return false
}

// AddItem schedules a ready chunk into an open plan. The chunk moves to
// inPlan in the same transaction.
func (e *Engine) AddItem(owner, planID, chunkID string, locked bool, aiReason string) (models.DayPlanItem, error) {
	var created models.DayPlanItem
	err := e.store.Transact(func(s storage.Store) error {
		plan, err := getOwnedPlan(s, owner, planID)
		if err != nil {
			return err
		}
		if !plan.Open() {
			return apperrors.Conflictf("day plan is %s; items can only be added to a draft or active plan", plan.Status)
		}
		chunk, err := getOwnedChunk(s, owner, chunkID)
		if err != nil {
			return err
		}
		items, err := s.ListItemsByPlan(plan.ID)
		if err != nil {
			return err
		}
		if err := guard.CheckChunkNotOpen(items, chunk.ID); err != nil {
			return err
		}
		if err := guard.CheckItemCap(items); err != nil {
			return err
		}
		switch chunk.Status {
		case models.ChunkStatusReady:
		case models.ChunkStatusInPlan, models.ChunkStatusInProgress:
			return apperrors.Conflictf("chunk is already scheduled in another open day plan")
		case models.ChunkStatusDone:
			return apperrors.Conflictf("chunk is already done")
		default:
			return apperrors.Conflictf("chunk is %s, not ready; groom it first", chunk.Status)
		}

		created = models.DayPlanItem{
			ID:        e.newID(),
			DayPlanID: plan.ID,
			ChunkID:   chunk.ID,
			Order:     maxOrder(items, func(it models.DayPlanItem) int { return it.Order }) + 1,
			Locked:    locked,
			Status:    models.ItemStatusPending,
			AIReason:  aiReason,
		}
		if err := s.PutItem(created); err != nil {
			return err
		}
		chunk.Status = models.ChunkStatusInPlan
		return s.PutChunk(chunk)
	})
	if err != nil {
		return models.DayPlanItem{}, err
	}
	return created, nil
}

// RemoveItem takes a not-yet-finished item off its plan. The chunk goes back
// to ready only if it was inPlan; a chunk already advanced past that keeps
// its status.
func (e *Engine) RemoveItem(owner, itemID string) error {
	return e.store.Transact(func(s storage.Store) error {
		item, _, err := getOwnedItem(s, owner, itemID)
		if err != nil {
			return err
		}
		if itemTerminal(item.Status) {
			return apperrors.Conflictf("item is already %s and cannot be removed", item.Status)
		}
		if err := s.DeleteItem(item.ID); err != nil {
			return err
		}
		chunk, err := s.GetChunk(item.ChunkID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if chunk.Status == models.ChunkStatusInPlan {
			chunk.Status = models.ChunkStatusReady
			return s.PutChunk(chunk)
		}
		return nil
	})
}

// StartItem begins work on an item of the active plan. At most one item per
// plan may be in progress: any other running item is demoted back to pending,
// and its chunk to inPlan, in the same transaction.
func (e *Engine) StartItem(owner, itemID string) (models.DayPlanItem, error) {
	var updated models.DayPlanItem
	err := e.store.Transact(func(s storage.Store) error {
		item, plan, err := getOwnedItem(s, owner, itemID)
		if err != nil {
			return err
		}
		if plan.Status != models.PlanStatusActive {
			return apperrors.Conflictf("day plan is %s; finalize it before starting work", plan.Status)
		}
		if item.Status == models.ItemStatusInProgress {
			updated = item
			return nil
		}
		if itemTerminal(item.Status) {
			return apperrors.Conflictf("item is already %s", item.Status)
		}

		siblings, err := s.ListItemsByPlan(plan.ID)
		if err != nil {
			return err
		}
		for _, other := range siblings {
			if other.ID == item.ID || other.Status != models.ItemStatusInProgress {
				continue
			}
			other.Status = models.ItemStatusPending
			if err := s.PutItem(other); err != nil {
				return err
			}
			oc, err := s.GetChunk(other.ChunkID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			if err == nil && oc.Status != models.ChunkStatusDone {
				oc.Status = models.ChunkStatusInPlan
				if err := s.PutChunk(oc); err != nil {
					return err
				}
			}
		}

		now := e.now()
		item.Status = models.ItemStatusInProgress
		item.StartedAt = &now
		if err := s.PutItem(item); err != nil {
			return err
		}
		chunk, err := s.GetChunk(item.ChunkID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if err == nil && chunk.Status != models.ChunkStatusDone {
			chunk.Status = models.ChunkStatusInProgress
			if err := s.PutChunk(chunk); err != nil {
				return err
			}
		}
		updated = item
		return nil
	})
	if err != nil {
		return models.DayPlanItem{}, err
	}
	return updated, nil
}

// PauseItem returns a running item to pending; its chunk steps back to
// inPlan.
func (e *Engine) PauseItem(owner, itemID string) (models.DayPlanItem, error) {
	var updated models.DayPlanItem
	err := e.store.Transact(func(s storage.Store) error {
		item, _, err := getOwnedItem(s, owner, itemID)
		if err != nil {
			return err
		}
		if item.Status != models.ItemStatusInProgress {
			return apperrors.Conflictf("only an in-progress item can be paused (item is %s)", item.Status)
		}
		item.Status = models.ItemStatusPending
		if err := s.PutItem(item); err != nil {
			return err
		}
		chunk, err := s.GetChunk(item.ChunkID)
		if errors.Is(err, storage.ErrNotFound) {
			updated = item
			return nil
		}
		if err != nil {
			return err
		}
		if chunk.Status != models.ChunkStatusDone {
			chunk.Status = models.ChunkStatusInPlan
			if err := s.PutChunk(chunk); err != nil {
				return err
			}
		}
		updated = item
		return nil
	})
	if err != nil {
		return models.DayPlanItem{}, err
	}
	return updated, nil
}

// CompleteItem finishes an item with the actual minutes spent. The chunk is
// marked done and its area touched.
func (e *Engine) CompleteItem(owner, itemID string, actualDurationMin int) (models.DayPlanItem, error) {
	if actualDurationMin <= 0 {
		return models.DayPlanItem{}, apperrors.Validationf("actual duration must be positive minutes")
	}
	var updated models.DayPlanItem
	err := e.store.Transact(func(s storage.Store) error {
		item, _, err := getOwnedItem(s, owner, itemID)
		if err != nil {
			return err
		}
		if itemTerminal(item.Status) {
			return apperrors.Conflictf("item is already %s", item.Status)
		}
		now := e.now()
		item.Status = models.ItemStatusCompleted
		item.CompletedAt = &now
		item.ActualDurationMin = &actualDurationMin
		if err := s.PutItem(item); err != nil {
			return err
		}
		updated = item
		return completeChunkForItem(s, item.ChunkID, now)
	})
	if err != nil {
		return models.DayPlanItem{}, err
	}
	return updated, nil
}

func completeChunkForItem(s storage.Store, chunkID string, now time.Time) error {
	chunk, err := s.GetChunk(chunkID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if chunk.Status == models.ChunkStatusDone {
		return nil
	}
	chunk.Status = models.ChunkStatusDone
	chunk.CompletedAt = &now
	if err := s.PutChunk(chunk); err != nil {
		return err
	}
	return touchArea(s, chunk.AreaID, now)
}

// SkipItem marks a pending item skipped; the chunk returns to the ready pool.
func (e *Engine) SkipItem(owner, itemID string) (models.DayPlanItem, error) {
	var updated models.DayPlanItem
	err := e.store.Transact(func(s storage.Store) error {
		item, _, err := getOwnedItem(s, owner, itemID)
		if err != nil {
			return err
		}
		if item.Status != models.ItemStatusPending {
			return apperrors.Conflictf("only a pending item can be skipped (item is %s)", item.Status)
		}
		item.Status = models.ItemStatusSkipped
		if err := s.PutItem(item); err != nil {
			return err
		}
		updated = item
		return releaseChunkForItem(s, item.ChunkID)
	})
	if err != nil {
		return models.DayPlanItem{}, err
	}
	return updated, nil
}

func releaseChunkForItem(s storage.Store, chunkID string) error {
	chunk, err := s.GetChunk(chunkID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if chunk.Status == models.ChunkStatusDone {
		return nil
	}
	chunk.Status = models.ChunkStatusReady
	return s.PutChunk(chunk)
}

// UpdateItemStatus is the generic transition used for statuses without a
// dedicated operation, chiefly moved. inProgress must go through StartItem so
// the single-running-item rule holds.
func (e *Engine) UpdateItemStatus(owner, itemID string, status models.ItemStatus, actualDurationMin *int) (models.DayPlanItem, error) {
	switch status {
	case models.ItemStatusPending, models.ItemStatusCompleted, models.ItemStatusSkipped, models.ItemStatusMoved:
	case models.ItemStatusInProgress:
		return models.DayPlanItem{}, apperrors.Validationf("use the start operation to begin an item")
	default:
		return models.DayPlanItem{}, apperrors.Validationf("invalid item status %q", status)
	}
	if actualDurationMin != nil && *actualDurationMin <= 0 {
		return models.DayPlanItem{}, apperrors.Validationf("actual duration must be positive minutes")
	}

	var updated models.DayPlanItem
	err := e.store.Transact(func(s storage.Store) error {
		item, _, err := getOwnedItem(s, owner, itemID)
		if err != nil {
			return err
		}
		now := e.now()
		item.Status = status
		switch status {
		case models.ItemStatusCompleted:
			item.CompletedAt = &now
			if actualDurationMin != nil {
				item.ActualDurationMin = actualDurationMin
			}
		case models.ItemStatusPending:
			item.CompletedAt = nil
		}
		if err := s.PutItem(item); err != nil {
			return err
		}
		updated = item

		switch status {
		case models.ItemStatusCompleted:
			return completeChunkForItem(s, item.ChunkID, now)
		case models.ItemStatusSkipped, models.ItemStatusMoved:
			return releaseChunkForItem(s, item.ChunkID)
		case models.ItemStatusPending:
			chunk, err := s.GetChunk(item.ChunkID)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if chunk.Status != models.ChunkStatusDone {
				chunk.Status = models.ChunkStatusInPlan
				return s.PutChunk(chunk)
			}
		}
		return nil
	})
	if err != nil {
		return models.DayPlanItem{}, err
	}
	return updated, nil
}

// ReorderItems rewrites the positions of a plan's items. Every referenced
// item must belong to the same owned plan.
func (e *Engine) ReorderItems(owner, planID string, orders []ItemOrder) error {
	return e.store.Transact(func(s storage.Store) error {
		plan, err := getOwnedPlan(s, owner, planID)
		if err != nil {
			return err
		}
		for _, o := range orders {
			item, err := s.GetItem(o.ItemID)
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.NotFoundf("day plan item not found")
			}
			if err != nil {
				return err
			}
			if item.DayPlanID != plan.ID {
				return apperrors.Validationf("item %s does not belong to this plan", o.ItemID)
			}
			item.Order = o.Order
			if err := s.PutItem(item); err != nil {
				return err
			}
		}
		return nil
	})
}
