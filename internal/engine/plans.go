package engine

import (
	"errors"
	"sort"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/constants"
	"chunkwise/internal/guard"
	"chunkwise/internal/logger"
	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

type CreatePlanInput struct {
	Date       string
	TimeBudget int
	EnergyMode models.EnergyMode
	Notes      string
}

type UpdatePlanInput struct {
	TimeBudget *int
	EnergyMode *models.EnergyMode
	Notes      *string
}

// PlanItemView joins an item with its chunk and surrounding context. Chunk is
// nil when the chunk was deleted after the plan closed.
type PlanItemView struct {
	models.DayPlanItem
	Chunk          *models.Chunk
	AreaTitle      string
	IntentionTitle string
}

type PlanView struct {
	models.DayPlan
	Items []PlanItemView
}

// PlanSummary is the list-view row: a plan plus its item counters.
type PlanSummary struct {
	models.DayPlan
	ItemCount        int
	TotalDurationMin int
	CompletedCount   int
}

// PlanStats are the execution counters for a single plan.
type PlanStats struct {
	PlanID        string
	Date          string
	Status        models.PlanStatus
	TotalItems    int
	Completed     int
	Skipped       int
	Moved         int
	Pending       int
	InProgress    int
	TimeBudgetMin int
	PlannedMin    int
	UsedMin       int
	RemainingMin  int
	CompletionPct int
}

func checkEnergyMode(mode models.EnergyMode) error {
	switch mode {
	case models.EnergyModeDeep, models.EnergyModeNormal, models.EnergyModeLight:
		return nil
	default:
		return apperrors.Validationf("invalid energy mode %q", mode)
	}
}

func checkPlanDate(date string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return apperrors.Validationf("date must be YYYY-MM-DD, got %q", date)
	}
	return nil
}

func (e *Engine) CreatePlan(owner string, in CreatePlanInput) (models.DayPlan, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return models.DayPlan{}, err
	}
	if err := checkPlanDate(in.Date); err != nil {
		return models.DayPlan{}, err
	}
	if in.TimeBudget <= 0 {
		return models.DayPlan{}, apperrors.Validationf("time budget must be positive minutes")
	}
	mode := in.EnergyMode
	if mode == "" {
		mode = models.EnergyModeNormal
	}
	if err := checkEnergyMode(mode); err != nil {
		return models.DayPlan{}, err
	}

	var created models.DayPlan
	err := e.store.Transact(func(s storage.Store) error {
		_, err := s.GetPlanByDate(owner, in.Date)
		if err == nil {
			return apperrors.Conflictf("a day plan for %s already exists", in.Date)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		created = models.DayPlan{
			ID:         e.newID(),
			OwnerID:    owner,
			Date:       in.Date,
			TimeBudget: in.TimeBudget,
			EnergyMode: mode,
			Notes:      in.Notes,
			Status:     models.PlanStatusDraft,
			CreatedAt:  e.now(),
		}
		return s.PutPlan(created)
	})
	if err != nil {
		return models.DayPlan{}, err
	}
	return created, nil
}

func buildPlanView(s storage.Store, plan models.DayPlan) (PlanView, error) {
	items, err := s.ListItemsByPlan(plan.ID)
	if err != nil {
		return PlanView{}, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	view := PlanView{DayPlan: plan, Items: make([]PlanItemView, 0, len(items))}
	for _, it := range items {
		iv := PlanItemView{DayPlanItem: it}
		chunk, err := s.GetChunk(it.ChunkID)
		switch {
		case err == nil:
			c := chunk
			iv.Chunk = &c
			if a, err := s.GetArea(c.AreaID); err == nil {
				iv.AreaTitle = a.Title
			} else if !errors.Is(err, storage.ErrNotFound) {
				return PlanView{}, err
			}
			if in, err := s.GetIntention(c.IntentionID); err == nil {
				iv.IntentionTitle = in.Title
			} else if !errors.Is(err, storage.ErrNotFound) {
				return PlanView{}, err
			}
		case errors.Is(err, storage.ErrNotFound):
			// chunk deleted after the plan closed; keep the item row
		default:
			return PlanView{}, err
		}
		view.Items = append(view.Items, iv)
	}
	return view, nil
}

func (e *Engine) GetPlan(owner, id string) (PlanView, error) {
	plan, err := getOwnedPlan(e.store, owner, id)
	if err != nil {
		return PlanView{}, err
	}
	return buildPlanView(e.store, plan)
}

func (e *Engine) GetPlanByDate(owner, date string) (PlanView, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return PlanView{}, err
	}
	if err := checkPlanDate(date); err != nil {
		return PlanView{}, err
	}
	plan, err := e.store.GetPlanByDate(owner, date)
	if errors.Is(err, storage.ErrNotFound) {
		return PlanView{}, apperrors.NotFoundf("no day plan for %s", date)
	}
	if err != nil {
		return PlanView{}, err
	}
	return buildPlanView(e.store, plan)
}

// GetActivePlan returns today's plan if it has been finalized.
func (e *Engine) GetActivePlan(owner string) (PlanView, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return PlanView{}, err
	}
	today := e.now().Format(constants.DateFormat)
	plan, err := e.store.GetPlanByDate(owner, today)
	if errors.Is(err, storage.ErrNotFound) {
		return PlanView{}, apperrors.NotFoundf("no day plan for today")
	}
	if err != nil {
		return PlanView{}, err
	}
	if plan.Status != models.PlanStatusActive {
		return PlanView{}, apperrors.NotFoundf("today's plan is %s, not active", plan.Status)
	}
	return buildPlanView(e.store, plan)
}

// ListPlans returns the owner's plans with item counters, newest date first.
// limit <= 0 means no limit.
func (e *Engine) ListPlans(owner string, limit, offset int) ([]PlanSummary, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return nil, err
	}
	plans, err := e.store.ListPlans(owner)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].Date > plans[j].Date })
	if offset > 0 {
		if offset >= len(plans) {
			return nil, nil
		}
		plans = plans[offset:]
	}
	if limit > 0 && len(plans) > limit {
		plans = plans[:limit]
	}

	out := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		sum := PlanSummary{DayPlan: p}
		items, err := e.store.ListItemsByPlan(p.ID)
		if err != nil {
			return nil, err
		}
		sum.ItemCount = len(items)
		for _, it := range items {
			if it.Status == models.ItemStatusCompleted {
				sum.CompletedCount++
			}
			if c, err := e.store.GetChunk(it.ChunkID); err == nil {
				sum.TotalDurationMin += c.DurationMin
			} else if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (e *Engine) UpdatePlan(owner, id string, in UpdatePlanInput) (models.DayPlan, error) {
	var updated models.DayPlan
	err := e.store.Transact(func(s storage.Store) error {
		plan, err := getOwnedPlan(s, owner, id)
		if err != nil {
			return err
		}
		if in.TimeBudget != nil {
			if *in.TimeBudget <= 0 {
				return apperrors.Validationf("time budget must be positive minutes")
			}
			plan.TimeBudget = *in.TimeBudget
		}
		if in.EnergyMode != nil {
			if err := checkEnergyMode(*in.EnergyMode); err != nil {
				return err
			}
			plan.EnergyMode = *in.EnergyMode
		}
		if in.Notes != nil {
			plan.Notes = *in.Notes
		}
		updated = plan
		return s.PutPlan(plan)
	})
	if err != nil {
		return models.DayPlan{}, err
	}
	return updated, nil
}

// FinalizePlan moves a draft to active. Any other status is a conflict.
func (e *Engine) FinalizePlan(owner, id string) (models.DayPlan, error) {
	var updated models.DayPlan
	err := e.store.Transact(func(s storage.Store) error {
		plan, err := getOwnedPlan(s, owner, id)
		if err != nil {
			return err
		}
		if plan.Status != models.PlanStatusDraft {
			return apperrors.Conflictf("only a draft plan can be finalized (plan is %s)", plan.Status)
		}
		now := e.now()
		plan.Status = models.PlanStatusActive
		plan.FinalizedAt = &now
		updated = plan
		return s.PutPlan(plan)
	})
	if err != nil {
		return models.DayPlan{}, err
	}
	return updated, nil
}

// CompletePlan closes an active plan and records the day review. The review
// is written exactly once; completing twice is a conflict.
func (e *Engine) CompletePlan(owner, id string, load models.PerceivedLoad, notes string) (models.DayPlan, error) {
	switch load {
	case models.LoadLight, models.LoadNormal, models.LoadHeavy:
	default:
		return models.DayPlan{}, apperrors.Validationf("invalid perceived load %q", load)
	}
	var updated models.DayPlan
	err := e.store.Transact(func(s storage.Store) error {
		plan, err := getOwnedPlan(s, owner, id)
		if err != nil {
			return err
		}
		if plan.Status != models.PlanStatusActive {
			return apperrors.Conflictf("only an active plan can be completed (plan is %s)", plan.Status)
		}
		if _, err := s.GetReviewByPlan(plan.ID); err == nil {
			return apperrors.Conflictf("plan already has a day review")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		now := e.now()
		if err := s.PutReview(models.DayReview{
			ID:            e.newID(),
			DayPlanID:     plan.ID,
			PerceivedLoad: load,
			Notes:         notes,
			CreatedAt:     now,
		}); err != nil {
			return err
		}
		plan.Status = models.PlanStatusCompleted
		plan.CompletedAt = &now
		updated = plan
		return s.PutPlan(plan)
	})
	if err != nil {
		return models.DayPlan{}, err
	}
	return updated, nil
}

// GetReview returns the day review of a completed plan.
func (e *Engine) GetReview(owner, planID string) (models.DayReview, error) {
	plan, err := getOwnedPlan(e.store, owner, planID)
	if err != nil {
		return models.DayReview{}, err
	}
	review, err := e.store.GetReviewByPlan(plan.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DayReview{}, apperrors.NotFoundf("plan has no day review")
	}
	if err != nil {
		return models.DayReview{}, err
	}
	return review, nil
}

// DeletePlan removes the plan and its items; chunks still marked inPlan go
// back to ready.
func (e *Engine) DeletePlan(owner, id string) error {
	return e.store.Transact(func(s storage.Store) error {
		plan, err := getOwnedPlan(s, owner, id)
		if err != nil {
			return err
		}
		items, err := s.ListItemsByPlan(plan.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			chunk, err := s.GetChunk(it.ChunkID)
			if err == nil && chunk.Status == models.ChunkStatusInPlan {
				chunk.Status = models.ChunkStatusReady
				if err := s.PutChunk(chunk); err != nil {
					return err
				}
			} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			if err := s.DeleteItem(it.ID); err != nil {
				return err
			}
		}
		return s.DeletePlan(plan.ID)
	})
}

// DuplicatePlan creates a new draft at targetDate carrying over the source
// plan's settings and whichever items can still be scheduled: a chunk that is
// done, deleted, or open in another plan is silently dropped. Item statuses
// reset to pending; locked flags and AI reasons carry over.
func (e *Engine) DuplicatePlan(owner, sourceID, targetDate string) (models.DayPlan, error) {
	if err := checkPlanDate(targetDate); err != nil {
		return models.DayPlan{}, err
	}
	var created models.DayPlan
	err := e.store.Transact(func(s storage.Store) error {
		source, err := getOwnedPlan(s, owner, sourceID)
		if err != nil {
			return err
		}
		if _, err := s.GetPlanByDate(owner, targetDate); err == nil {
			return apperrors.Conflictf("a day plan for %s already exists", targetDate)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		now := e.now()
		created = models.DayPlan{
			ID:         e.newID(),
			OwnerID:    owner,
			Date:       targetDate,
			TimeBudget: source.TimeBudget,
			EnergyMode: source.EnergyMode,
			Notes:      source.Notes,
			Status:     models.PlanStatusDraft,
			CreatedAt:  now,
		}
		if err := s.PutPlan(created); err != nil {
			return err
		}

		items, err := s.ListItemsByPlan(source.ID)
		if err != nil {
			return err
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

		order := 0
		for _, it := range items {
			chunk, err := s.GetChunk(it.ChunkID)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if chunk.Status == models.ChunkStatusDone {
				continue
			}
			open, err := chunkOpenElsewhere(s, chunk.ID)
			if err != nil {
				return err
			}
			if open {
				logger.Debug("duplicate: skipping chunk open in another plan", "chunk", chunk.ID)
				continue
			}
			if err := s.PutItem(models.DayPlanItem{
				ID:        e.newID(),
				DayPlanID: created.ID,
				ChunkID:   chunk.ID,
				Order:     order,
				Locked:    it.Locked,
				Status:    models.ItemStatusPending,
				AIReason:  it.AIReason,
			}); err != nil {
				return err
			}
			order++
			chunk.Status = models.ChunkStatusInPlan
			if err := s.PutChunk(chunk); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.DayPlan{}, err
	}
	return created, nil
}

// ActivePlanStats computes the execution counters for today's active plan.
func (e *Engine) ActivePlanStats(owner string) (PlanStats, error) {
	view, err := e.GetActivePlan(owner)
	if err != nil {
		return PlanStats{}, err
	}
	return planStats(view), nil
}

func planStats(view PlanView) PlanStats {
	stats := PlanStats{
		PlanID:        view.ID,
		Date:          view.Date,
		Status:        view.Status,
		TotalItems:    len(view.Items),
		TimeBudgetMin: view.TimeBudget,
	}
	for _, it := range view.Items {
		switch it.Status {
		case models.ItemStatusCompleted:
			stats.Completed++
			if it.ActualDurationMin != nil {
				stats.UsedMin += *it.ActualDurationMin
			}
		case models.ItemStatusSkipped:
			stats.Skipped++
		case models.ItemStatusMoved:
			stats.Moved++
		case models.ItemStatusInProgress:
			stats.InProgress++
		default:
			stats.Pending++
		}
		if it.Chunk != nil {
			stats.PlannedMin += it.Chunk.DurationMin
		}
	}
	stats.RemainingMin = stats.TimeBudgetMin - stats.UsedMin
	if stats.TotalItems > 0 {
		stats.CompletionPct = stats.Completed * 100 / stats.TotalItems
	}
	return stats
}

// CheckExpired marks every plan dated before today that is neither completed
// nor already expired. Safe to run repeatedly; returns how many plans it
// expired this pass.
func (e *Engine) CheckExpired(owner string) (int, error) {
	if err := guard.CheckOwner(owner); err != nil {
		return 0, err
	}
	today := e.now().Format(constants.DateFormat)
	expired := 0
	err := e.store.Transact(func(s storage.Store) error {
		plans, err := s.ListPlans(owner)
		if err != nil {
			return err
		}
		for _, p := range plans {
			if p.Date >= today {
				continue
			}
			if p.Status == models.PlanStatusCompleted || p.Status == models.PlanStatusExpired {
				continue
			}
			p.Status = models.PlanStatusExpired
			if err := s.PutPlan(p); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		logger.Info("expired stale day plans", "count", expired)
	}
	return expired, nil
}
