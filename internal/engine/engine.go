// Package engine implements the planning state machine: entity lifecycles,
// the cascade rules that keep chunk and day-plan-item statuses consistent,
// and the cardinality limits enforced at every boundary. Every mutating
// operation takes the acting owner id explicitly, runs inside one storage
// transaction, and either fully commits or fully fails.
package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/guard"
	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

type Engine struct {
	store storage.Provider
	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

// WithClock overrides the engine's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the engine's id source. Used by tests.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func New(store storage.Provider, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying provider for read-only callers (CLI, TUI).
func (e *Engine) Store() storage.Provider {
	return e.store
}

// Ownership-checked lookups. A missing record is NotFound; a record owned by
// someone else is an authorization failure, reported distinctly.

func getOwnedArea(s storage.Store, owner, id string) (models.Area, error) {
	a, err := s.GetArea(id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Area{}, apperrors.NotFoundf("area not found")
	}
	if err != nil {
		return models.Area{}, err
	}
	if err := guard.CheckOwner(owner, a.OwnerID); err != nil {
		return models.Area{}, err
	}
	return a, nil
}

func getOwnedIntention(s storage.Store, owner, id string) (models.Intention, error) {
	in, err := s.GetIntention(id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Intention{}, apperrors.NotFoundf("intention not found")
	}
	if err != nil {
		return models.Intention{}, err
	}
	if err := guard.CheckOwner(owner, in.OwnerID); err != nil {
		return models.Intention{}, err
	}
	return in, nil
}

func getOwnedChunk(s storage.Store, owner, id string) (models.Chunk, error) {
	c, err := s.GetChunk(id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Chunk{}, apperrors.NotFoundf("chunk not found")
	}
	if err != nil {
		return models.Chunk{}, err
	}
	if err := guard.CheckOwner(owner, c.OwnerID); err != nil {
		return models.Chunk{}, err
	}
	return c, nil
}

func getOwnedPlan(s storage.Store, owner, id string) (models.DayPlan, error) {
	p, err := s.GetPlan(id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DayPlan{}, apperrors.NotFoundf("day plan not found")
	}
	if err != nil {
		return models.DayPlan{}, err
	}
	if err := guard.CheckOwner(owner, p.OwnerID); err != nil {
		return models.DayPlan{}, err
	}
	return p, nil
}

// getOwnedItem resolves an item through its plan, which carries the
// ownership.
func getOwnedItem(s storage.Store, owner, id string) (models.DayPlanItem, models.DayPlan, error) {
	it, err := s.GetItem(id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DayPlanItem{}, models.DayPlan{}, apperrors.NotFoundf("day plan item not found")
	}
	if err != nil {
		return models.DayPlanItem{}, models.DayPlan{}, err
	}
	plan, err := getOwnedPlan(s, owner, it.DayPlanID)
	if err != nil {
		return models.DayPlanItem{}, models.DayPlan{}, err
	}
	return it, plan, nil
}

// touchArea advances an area's lastTouchedAt; called whenever a chunk under
// it reaches done.
func touchArea(s storage.Store, areaID string, now time.Time) error {
	a, err := s.GetArea(areaID)
	if errors.Is(err, storage.ErrNotFound) {
		// The area can be gone if a cascade delete raced ahead; the chunk
		// completion still stands.
		return nil
	}
	if err != nil {
		return err
	}
	a.LastTouchedAt = now
	return s.PutArea(a)
}

// chunkOpenElsewhere reports whether the chunk appears as an item of any
// open (draft or active) plan.
func chunkOpenElsewhere(s storage.Store, chunkID string) (bool, error) {
	items, err := s.ListItemsByChunk(chunkID)
	if err != nil {
		return false, err
	}
	for _, it := range items {
		plan, err := s.GetPlan(it.DayPlanID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		if plan.Open() {
			return true, nil
		}
	}
	return false, nil
}

func maxOrder[T any](items []T, order func(T) int) int {
	max := -1
	for _, it := range items {
		if o := order(it); o > max {
			max = o
		}
	}
	return max
}
