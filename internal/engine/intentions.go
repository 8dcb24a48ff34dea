package engine

import (
	"sort"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/constants"
	"chunkwise/internal/guard"
	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

type CreateIntentionInput struct {
	AreaID      string
	Title       string
	Description string
	Status      models.IntentionStatus // defaults to active
}

type UpdateIntentionInput struct {
	Title       *string
	Description *string
	Status      *models.IntentionStatus
}

// IntentionLimit reports how much of the active-intention cap an area has
// used.
type IntentionLimit struct {
	ActiveCount int
	Max         int
	AtLimit     bool
}

func (e *Engine) CreateIntention(owner string, in CreateIntentionInput) (models.Intention, error) {
	if err := guard.CheckTitle(in.Title); err != nil {
		return models.Intention{}, err
	}
	status := in.Status
	if status == "" {
		status = models.IntentionStatusActive
	}
	switch status {
	case models.IntentionStatusActive, models.IntentionStatusPaused, models.IntentionStatusDone:
	default:
		return models.Intention{}, apperrors.Validationf("invalid intention status %q", status)
	}

	var created models.Intention
	err := e.store.Transact(func(s storage.Store) error {
		area, err := getOwnedArea(s, owner, in.AreaID)
		if err != nil {
			return err
		}
		siblings, err := s.ListIntentionsByArea(area.ID)
		if err != nil {
			return err
		}
		if status == models.IntentionStatusActive {
			if err := guard.CheckActiveIntentionCap(siblings); err != nil {
				return err
			}
		}
		created = models.Intention{
			ID:          e.newID(),
			OwnerID:     owner,
			AreaID:      area.ID,
			Title:       in.Title,
			Description: in.Description,
			Status:      status,
			Order:       maxOrder(siblings, func(in models.Intention) int { return in.Order }) + 1,
			CreatedAt:   e.now(),
		}
		return s.PutIntention(created)
	})
	if err != nil {
		return models.Intention{}, err
	}
	return created, nil
}

func (e *Engine) GetIntention(owner, id string) (models.Intention, error) {
	return getOwnedIntention(e.store, owner, id)
}

// ListIntentionsByArea returns an area's intentions in manual order,
// optionally filtered by status.
func (e *Engine) ListIntentionsByArea(owner, areaID string, status *models.IntentionStatus) ([]models.Intention, error) {
	if _, err := getOwnedArea(e.store, owner, areaID); err != nil {
		return nil, err
	}
	var (
		intentions []models.Intention
		err        error
	)
	if status != nil {
		intentions, err = e.store.ListIntentionsByAreaStatus(areaID, *status)
	} else {
		intentions, err = e.store.ListIntentionsByArea(areaID)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(intentions, func(i, j int) bool {
		return intentions[i].Order < intentions[j].Order
	})
	return intentions, nil
}

func (e *Engine) UpdateIntention(owner, id string, in UpdateIntentionInput) (models.Intention, error) {
	var updated models.Intention
	err := e.store.Transact(func(s storage.Store) error {
		intention, err := getOwnedIntention(s, owner, id)
		if err != nil {
			return err
		}
		if in.Title != nil {
			if err := guard.CheckTitle(*in.Title); err != nil {
				return err
			}
			intention.Title = *in.Title
		}
		if in.Description != nil {
			intention.Description = *in.Description
		}
		if in.Status != nil && *in.Status != intention.Status {
			switch *in.Status {
			case models.IntentionStatusActive, models.IntentionStatusPaused, models.IntentionStatusDone:
			default:
				return apperrors.Validationf("invalid intention status %q", *in.Status)
			}
			// Reactivating counts against the cap like a fresh creation.
			if *in.Status == models.IntentionStatusActive {
				siblings, err := s.ListIntentionsByArea(intention.AreaID)
				if err != nil {
					return err
				}
				others := siblings[:0]
				for _, sib := range siblings {
					if sib.ID != intention.ID {
						others = append(others, sib)
					}
				}
				if err := guard.CheckActiveIntentionCap(others); err != nil {
					return err
				}
			}
			intention.Status = *in.Status
		}
		updated = intention
		return s.PutIntention(intention)
	})
	if err != nil {
		return models.Intention{}, err
	}
	return updated, nil
}

// ReorderIntentions rewrites the manual sort keys of an area's intentions to
// match the given id sequence. Every intention of the area must appear
// exactly once.
func (e *Engine) ReorderIntentions(owner, areaID string, orderedIDs []string) error {
	return e.store.Transact(func(s storage.Store) error {
		if _, err := getOwnedArea(s, owner, areaID); err != nil {
			return err
		}
		intentions, err := s.ListIntentionsByArea(areaID)
		if err != nil {
			return err
		}
		if len(orderedIDs) != len(intentions) {
			return apperrors.Validationf("reorder must list all %d intentions", len(intentions))
		}
		byID := make(map[string]models.Intention, len(intentions))
		for _, in := range intentions {
			byID[in.ID] = in
		}
		for pos, id := range orderedIDs {
			in, ok := byID[id]
			if !ok {
				return apperrors.Validationf("intention %s does not belong to this area", id)
			}
			delete(byID, id)
			in.Order = pos
			if err := s.PutIntention(in); err != nil {
				return err
			}
		}
		return nil
	})
}

// CheckIntentionLimit reports the area's active-intention usage without
// mutating anything, so callers can warn before a create would fail.
func (e *Engine) CheckIntentionLimit(owner, areaID string) (IntentionLimit, error) {
	if _, err := getOwnedArea(e.store, owner, areaID); err != nil {
		return IntentionLimit{}, err
	}
	active, err := e.store.ListIntentionsByAreaStatus(areaID, models.IntentionStatusActive)
	if err != nil {
		return IntentionLimit{}, err
	}
	return IntentionLimit{
		ActiveCount: len(active),
		Max:         constants.MaxActiveIntentions,
		AtLimit:     len(active) >= constants.MaxActiveIntentions,
	}, nil
}

// DeleteIntention removes the intention and its chunks, plus any open plan
// items referencing those chunks.
func (e *Engine) DeleteIntention(owner, id string) error {
	return e.store.Transact(func(s storage.Store) error {
		intention, err := getOwnedIntention(s, owner, id)
		if err != nil {
			return err
		}
		return deleteIntentionCascade(s, intention.ID)
	})
}

func deleteIntentionCascade(s storage.Store, intentionID string) error {
	chunks, err := s.ListChunksByIntention(intentionID)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if err := deleteChunkCascade(s, c.ID); err != nil {
			return err
		}
	}
	return s.DeleteIntention(intentionID)
}
