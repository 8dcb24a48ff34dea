package storage

import (
	"errors"

	"chunkwise/internal/models"
)

// ErrNotFound is returned by point lookups when no record exists. The engine
// translates it into a caller-visible not-found error.
var ErrNotFound = errors.New("record not found")

// Store is the entity-store contract the engine runs against: point gets,
// range scans by secondary key, and whole-record writes.
type Store interface {
	// Areas
	GetArea(id string) (models.Area, error)
	ListAreas(owner string) ([]models.Area, error)
	ListAreasByStatus(owner string, status models.AreaStatus) ([]models.Area, error)
	PutArea(models.Area) error
	DeleteArea(id string) error

	// Intentions
	GetIntention(id string) (models.Intention, error)
	ListIntentionsByArea(areaID string) ([]models.Intention, error)
	ListIntentionsByAreaStatus(areaID string, status models.IntentionStatus) ([]models.Intention, error)
	PutIntention(models.Intention) error
	DeleteIntention(id string) error

	// Chunks
	GetChunk(id string) (models.Chunk, error)
	ListChunksByIntention(intentionID string) ([]models.Chunk, error)
	ListChunksByOwnerStatus(owner string, status models.ChunkStatus) ([]models.Chunk, error)
	PutChunk(models.Chunk) error
	DeleteChunk(id string) error

	// Day plans
	GetPlan(id string) (models.DayPlan, error)
	GetPlanByDate(owner, date string) (models.DayPlan, error)
	ListPlans(owner string) ([]models.DayPlan, error)
	PutPlan(models.DayPlan) error
	DeletePlan(id string) error

	// Day plan items
	GetItem(id string) (models.DayPlanItem, error)
	ListItemsByPlan(planID string) ([]models.DayPlanItem, error)
	ListItemsByChunk(chunkID string) ([]models.DayPlanItem, error)
	PutItem(models.DayPlanItem) error
	DeleteItem(id string) error

	// Day reviews
	GetReviewByPlan(planID string) (models.DayReview, error)
	PutReview(models.DayReview) error

	// Chunk splits
	ListSplitsByOriginal(chunkID string) ([]models.ChunkSplit, error)
	PutSplit(models.ChunkSplit) error
}

// Provider is a Store with lifecycle management and a transaction boundary.
// Transact runs fn against a transactional view of the store; the writes
// either all commit or all roll back. Each engine operation runs inside one
// Transact call.
type Provider interface {
	Store

	Transact(fn func(Store) error) error

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Utils
	GetConfigPath() string
}
