package engine

import (
	"sort"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/guard"
	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

type CreateAreaInput struct {
	Title       string
	Description string
	Weight      int
}

type UpdateAreaInput struct {
	Title       *string
	Description *string
	Weight      *int
	Status      *models.AreaStatus
	Health      *models.AreaHealth
}

// AreaHealthReport is the drill-down view behind the health badge.
type AreaHealthReport struct {
	AreaID            string
	Title             string
	Health            models.AreaHealth
	DaysSinceTouched  int
	ActiveIntentions  int
	ReadyChunks       int
	LastTouchedAt     string
	RecommendedAction string
}

func (e *Engine) CreateArea(owner string, in CreateAreaInput) (models.Area, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return models.Area{}, err
	}
	if err := guard.CheckTitle(in.Title); err != nil {
		return models.Area{}, err
	}
	if err := guard.CheckWeight(in.Weight); err != nil {
		return models.Area{}, err
	}

	now := e.now()
	area := models.Area{
		ID:            e.newID(),
		OwnerID:       owner,
		Title:         in.Title,
		Description:   in.Description,
		Weight:        in.Weight,
		Status:        models.AreaStatusActive,
		Health:        models.AreaHealthNormal,
		LastTouchedAt: now,
		CreatedAt:     now,
	}
	err := e.store.Transact(func(s storage.Store) error {
		return s.PutArea(area)
	})
	if err != nil {
		return models.Area{}, err
	}
	return area, nil
}

func (e *Engine) GetArea(owner, id string) (models.Area, error) {
	a, err := getOwnedArea(e.store, owner, id)
	if err != nil {
		return models.Area{}, err
	}
	a.Health = guard.AreaHealth(a.LastTouchedAt, e.now())
	return a, nil
}

// ListAreas returns the owner's areas, optionally filtered by status, sorted
// by weight descending then most recently touched. Health is derived at read
// time so a stale cached value never leaks out.
func (e *Engine) ListAreas(owner string, status *models.AreaStatus) ([]models.Area, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return nil, err
	}
	var (
		areas []models.Area
		err   error
	)
	if status != nil {
		areas, err = e.store.ListAreasByStatus(owner, *status)
	} else {
		areas, err = e.store.ListAreas(owner)
	}
	if err != nil {
		return nil, err
	}
	now := e.now()
	for i := range areas {
		areas[i].Health = guard.AreaHealth(areas[i].LastTouchedAt, now)
	}
	sort.SliceStable(areas, func(i, j int) bool {
		if areas[i].Weight != areas[j].Weight {
			return areas[i].Weight > areas[j].Weight
		}
		return areas[i].LastTouchedAt.After(areas[j].LastTouchedAt)
	})
	return areas, nil
}

func (e *Engine) UpdateArea(owner, id string, in UpdateAreaInput) (models.Area, error) {
	var updated models.Area
	err := e.store.Transact(func(s storage.Store) error {
		area, err := getOwnedArea(s, owner, id)
		if err != nil {
			return err
		}
		if in.Title != nil {
			if err := guard.CheckTitle(*in.Title); err != nil {
				return err
			}
			area.Title = *in.Title
		}
		if in.Description != nil {
			area.Description = *in.Description
		}
		if in.Weight != nil {
			if err := guard.CheckWeight(*in.Weight); err != nil {
				return err
			}
			area.Weight = *in.Weight
		}
		if in.Status != nil {
			switch *in.Status {
			case models.AreaStatusActive, models.AreaStatusPaused, models.AreaStatusArchived:
				area.Status = *in.Status
			default:
				return apperrors.Validationf("invalid area status %q", *in.Status)
			}
		}
		if in.Health != nil {
			switch *in.Health {
			case models.AreaHealthNormal, models.AreaHealthNeglected, models.AreaHealthUrgent:
				area.Health = *in.Health
			default:
				return apperrors.Validationf("invalid area health %q", *in.Health)
			}
		}
		updated = area
		return s.PutArea(area)
	})
	if err != nil {
		return models.Area{}, err
	}
	return updated, nil
}

// DeleteArea removes the area and everything under it: intentions, chunks,
// and any day plan items referencing those chunks. Items in already-closed
// plans are kept as history.
func (e *Engine) DeleteArea(owner, id string) error {
	return e.store.Transact(func(s storage.Store) error {
		area, err := getOwnedArea(s, owner, id)
		if err != nil {
			return err
		}
		intentions, err := s.ListIntentionsByArea(area.ID)
		if err != nil {
			return err
		}
		for _, in := range intentions {
			if err := deleteIntentionCascade(s, in.ID); err != nil {
				return err
			}
		}
		return s.DeleteArea(area.ID)
	})
}

// AreaHealthDetails explains why an area carries its current health value.
func (e *Engine) AreaHealthDetails(owner, id string) (AreaHealthReport, error) {
	var report AreaHealthReport
	err := e.store.Transact(func(s storage.Store) error {
		area, err := getOwnedArea(s, owner, id)
		if err != nil {
			return err
		}
		now := e.now()
		health := guard.AreaHealth(area.LastTouchedAt, now)

		active, err := s.ListIntentionsByAreaStatus(area.ID, models.IntentionStatusActive)
		if err != nil {
			return err
		}
		ready := 0
		for _, in := range active {
			chunks, err := s.ListChunksByIntention(in.ID)
			if err != nil {
				return err
			}
			for _, c := range chunks {
				if c.Status == models.ChunkStatusReady {
					ready++
				}
			}
		}

		report = AreaHealthReport{
			AreaID:           area.ID,
			Title:            area.Title,
			Health:           health,
			DaysSinceTouched: guard.DaysSinceTouched(area.LastTouchedAt, now),
			ActiveIntentions: len(active),
			ReadyChunks:      ready,
			LastTouchedAt:    area.LastTouchedAt.Format("2006-01-02"),
		}
		switch {
		case health == models.AreaHealthNeglected && ready == 0:
			report.RecommendedAction = "break an intention into ready chunks, then schedule one"
		case health == models.AreaHealthNeglected:
			report.RecommendedAction = "schedule a ready chunk from this area today"
		default:
			report.RecommendedAction = "no action needed"
		}
		return nil
	})
	if err != nil {
		return AreaHealthReport{}, err
	}
	return report, nil
}
