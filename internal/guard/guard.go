// Package guard holds the pure validation predicates applied before every
// mutating operation. Functions here never touch storage: they take the
// proposed mutation plus a snapshot of the affected entities and return an
// error identifying the violated rule, or nil.
package guard

import (
	"strings"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/constants"
	"chunkwise/internal/models"
)

// CheckTitle rejects titles that are empty after trimming.
func CheckTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.Validationf("title cannot be empty")
	}
	return nil
}

// CheckDoD rejects definitions of done that are empty after trimming.
func CheckDoD(dod string) error {
	if strings.TrimSpace(dod) == "" {
		return apperrors.Validationf("Definition of Done cannot be empty")
	}
	return nil
}

// CheckWeight validates an area weight.
func CheckWeight(weight int) error {
	if weight < constants.MinAreaWeight || weight > constants.MaxAreaWeight {
		return apperrors.Validationf("weight must be between %d and %d",
			constants.MinAreaWeight, constants.MaxAreaWeight)
	}
	return nil
}

// CheckDuration validates a chunk duration in minutes. Applied at creation
// and on every update.
func CheckDuration(durationMin int) error {
	if durationMin < constants.MinChunkDurationMin || durationMin > constants.MaxChunkDurationMin {
		return apperrors.Validationf("duration must be between %d and %d minutes",
			constants.MinChunkDurationMin, constants.MaxChunkDurationMin)
	}
	return nil
}

// CheckOwner verifies that every given entity is owned by owner. An empty
// owner id is treated as unauthenticated.
func CheckOwner(owner string, ownerIDs ...string) error {
	if owner == "" {
		return apperrors.Authorizationf("not authenticated")
	}
	for _, id := range ownerIDs {
		if id != owner {
			return apperrors.Authorizationf("access denied")
		}
	}
	return nil
}

// CheckActiveIntentionCap enforces the active-intention cap given the
// intention's current siblings. Only active-status siblings count.
func CheckActiveIntentionCap(siblings []models.Intention) error {
	active := 0
	for _, in := range siblings {
		if in.Status == models.IntentionStatusActive {
			active++
		}
	}
	if active >= constants.MaxActiveIntentions {
		return apperrors.Conflictf(
			"maximum %d active intentions per area; pause an existing intention first",
			constants.MaxActiveIntentions)
	}
	return nil
}

// CheckItemCap enforces the per-plan item ceiling.
func CheckItemCap(items []models.DayPlanItem) error {
	if len(items) >= constants.MaxPlanItems {
		return apperrors.Conflictf("maximum %d chunks per day plan", constants.MaxPlanItems)
	}
	return nil
}

// CheckChunkNotOpen rejects adding a chunk that already appears among the
// given items.
func CheckChunkNotOpen(items []models.DayPlanItem, chunkID string) error {
	for _, item := range items {
		if item.ChunkID == chunkID {
			return apperrors.Conflictf("chunk is already in this day plan")
		}
	}
	return nil
}

// AreaHealth derives an area's health from the age of its last touch. The
// derivation only ever yields normal or neglected; the urgent value exists in
// the schema but has no producing rule.
func AreaHealth(lastTouchedAt, now time.Time) models.AreaHealth {
	days := int(now.Sub(lastTouchedAt).Hours() / 24)
	if days > constants.NeglectedAfterDays {
		return models.AreaHealthNeglected
	}
	return models.AreaHealthNormal
}

// DaysSinceTouched returns the whole days elapsed since an area was last
// touched.
func DaysSinceTouched(lastTouchedAt, now time.Time) int {
	return int(now.Sub(lastTouchedAt).Hours() / 24)
}
