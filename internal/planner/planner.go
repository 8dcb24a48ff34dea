// Package planner turns an ordered proposal of chunks into a concrete day
// plan through the engine's item operations, and provides the deterministic
// ranking used when no external suggestion is available. It never bypasses
// the engine: every accepted entry goes through the same guarded operations
// a manual caller would use.
package planner

import (
	"sort"
	"strings"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/constants"
	"chunkwise/internal/engine"
	"chunkwise/internal/models"
)

// Entry is one proposed plan slot: a chunk and the reason it was picked.
type Entry struct {
	ChunkID string
	Reason  string
}

// Proposal is an ordered list of entries to become the plan's items.
type Proposal struct {
	Entries []Entry
}

// Snapshot is the state a proposal is validated against: the schedulable
// candidate pool and the plan's current items.
type Snapshot struct {
	Candidates []engine.ReadyChunk
	Items      []engine.PlanItemView
	MaxTasks   int
}

// UtilizationBand classifies planned time against the day's budget.
type UtilizationBand string

const (
	BandNominal    UtilizationBand = "nominal"
	BandNearLimit  UtilizationBand = "nearLimit"
	BandOverBudget UtilizationBand = "overBudget"
)

// Summary reports how full a plan is. Overrunning the budget is reported,
// never rejected.
type Summary struct {
	ItemCount     int
	TotalMin      int
	TimeBudgetMin int
	Utilization   float64
	Band          UtilizationBand
}

// Diff is the delta between a plan's current items and a proposal.
type Diff struct {
	Add    []Entry
	Keep   []engine.PlanItemView
	Remove []engine.PlanItemView
}

type Reconciler struct {
	eng *engine.Engine
}

func New(eng *engine.Engine) *Reconciler {
	return &Reconciler{eng: eng}
}

// Validate applies the acceptance contract to a proposal: every chunk must be
// a ready candidate or an unfinished item of this plan, no duplicates, the
// size ceiling holds with finished items counted against it, and every locked
// unfinished item must be carried over. A missing locked chunk rejects the
// proposal wholesale.
func Validate(snap Snapshot, p Proposal) error {
	maxTasks := snap.MaxTasks
	if maxTasks <= 0 || maxTasks > constants.MaxPlanItems {
		maxTasks = constants.MaxPlanItems
	}
	if len(p.Entries) == 0 {
		return apperrors.Validationf("proposal is empty")
	}
	if len(p.Entries) > maxTasks {
		return apperrors.Validationf("proposal has %d chunks, limit is %d", len(p.Entries), maxTasks)
	}

	// Finished items stay in the plan, keep their slot, and cannot host a
	// second item for the same chunk.
	finished := make(map[string]bool)
	retained := 0
	for _, it := range snap.Items {
		if terminalItem(it.Status) {
			finished[it.ChunkID] = true
			retained++
		}
	}
	if len(p.Entries)+retained > constants.MaxPlanItems {
		return apperrors.Validationf(
			"proposal has %d chunks but %d finished items stay in the plan; limit is %d",
			len(p.Entries), retained, constants.MaxPlanItems)
	}

	allowed := make(map[string]bool, len(snap.Candidates)+len(snap.Items))
	for _, c := range snap.Candidates {
		allowed[c.ID] = true
	}
	for _, it := range snap.Items {
		if !terminalItem(it.Status) {
			allowed[it.ChunkID] = true
		}
	}

	proposed := make(map[string]bool, len(p.Entries))
	for _, entry := range p.Entries {
		if proposed[entry.ChunkID] {
			return apperrors.Validationf("chunk %s appears twice in the proposal", entry.ChunkID)
		}
		proposed[entry.ChunkID] = true
		if finished[entry.ChunkID] {
			return apperrors.Validationf("chunk %s already has a finished item in this plan", entry.ChunkID)
		}
		if !allowed[entry.ChunkID] {
			return apperrors.Validationf("chunk %s is not schedulable for this plan", entry.ChunkID)
		}
	}

	for _, it := range snap.Items {
		if !it.Locked || terminalItem(it.Status) {
			continue
		}
		if !proposed[it.ChunkID] {
			return apperrors.Validationf("proposal drops locked chunk %s; locked items must be kept", it.ChunkID)
		}
	}
	return nil
}

func terminalItem(status models.ItemStatus) bool {
	switch status {
	case models.ItemStatusCompleted, models.ItemStatusSkipped, models.ItemStatusMoved:
		return true
	}
	return false
}

// Apply replaces a plan's replaceable items with the proposal. Non-locked
// unfinished items are removed, proposed chunks are added in order, and the
// final positions follow the proposal. Locked items keep their identity.
func (r *Reconciler) Apply(owner, planID string, p Proposal) (engine.PlanView, error) {
	view, err := r.eng.GetPlan(owner, planID)
	if err != nil {
		return engine.PlanView{}, err
	}
	candidates, err := r.eng.ListReadyChunks(owner)
	if err != nil {
		return engine.PlanView{}, err
	}
	if err := Validate(Snapshot{Candidates: candidates, Items: view.Items}, p); err != nil {
		return engine.PlanView{}, err
	}

	proposed := make(map[string]string, len(p.Entries)) // chunk id -> reason
	for _, entry := range p.Entries {
		proposed[entry.ChunkID] = entry.Reason
	}

	// Drop replaceable items the proposal does not keep.
	kept := make(map[string]engine.PlanItemView, len(view.Items)) // by chunk id
	for _, it := range view.Items {
		if terminalItem(it.Status) {
			continue
		}
		if _, keep := proposed[it.ChunkID]; keep || it.Locked {
			kept[it.ChunkID] = it
			continue
		}
		if err := r.eng.RemoveItem(owner, it.ID); err != nil {
			return engine.PlanView{}, err
		}
	}

	// Add the new entries and collect the final ordering.
	orders := make([]engine.ItemOrder, 0, len(p.Entries))
	for pos, entry := range p.Entries {
		if existing, ok := kept[entry.ChunkID]; ok {
			orders = append(orders, engine.ItemOrder{ItemID: existing.ID, Order: pos})
			continue
		}
		item, err := r.eng.AddItem(owner, planID, entry.ChunkID, false, entry.Reason)
		if err != nil {
			return engine.PlanView{}, err
		}
		orders = append(orders, engine.ItemOrder{ItemID: item.ID, Order: pos})
	}
	if err := r.eng.ReorderItems(owner, planID, orders); err != nil {
		return engine.PlanView{}, err
	}
	return r.eng.GetPlan(owner, planID)
}

// Summarize computes a plan's utilization. Items whose chunk is gone count as
// zero minutes.
func Summarize(view engine.PlanView) Summary {
	sum := Summary{ItemCount: len(view.Items), TimeBudgetMin: view.TimeBudget}
	for _, it := range view.Items {
		if it.Chunk != nil {
			sum.TotalMin += it.Chunk.DurationMin
		}
	}
	if view.TimeBudget > 0 {
		sum.Utilization = float64(sum.TotalMin) / float64(view.TimeBudget)
	}
	switch {
	case sum.Utilization <= constants.UtilizationNominalMax:
		sum.Band = BandNominal
	case sum.Utilization <= constants.UtilizationNearLimitMax:
		sum.Band = BandNearLimit
	default:
		sum.Band = BandOverBudget
	}
	return sum
}

// modeTags maps an energy mode to the chunk tags that fit it. A tag match
// nudges a chunk ahead of equal-weight peers.
var modeTags = map[models.EnergyMode][]string{
	models.EnergyModeDeep:  {"deep", "focus", "creative"},
	models.EnergyModeLight: {"light", "admin", "quick", "errand"},
}

func affinity(c engine.ReadyChunk, mode models.EnergyMode) int {
	for _, want := range modeTags[mode] {
		for _, tag := range c.Tags {
			if strings.EqualFold(tag, want) {
				return 1
			}
		}
	}
	return 0
}

// Rank orders candidates deterministically: area weight descending, then
// energy-mode tag affinity, then chunk creation order. Equal inputs always
// produce the same output, so the fallback plan is reproducible.
func Rank(candidates []engine.ReadyChunk, mode models.EnergyMode) []engine.ReadyChunk {
	ranked := make([]engine.ReadyChunk, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AreaWeight != ranked[j].AreaWeight {
			return ranked[i].AreaWeight > ranked[j].AreaWeight
		}
		ai, aj := affinity(ranked[i], mode), affinity(ranked[j], mode)
		if ai != aj {
			return ai > aj
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})
	return ranked
}

// Fill greedily takes ranked candidates until the budget or the task ceiling
// is reached. It never overshoots the budget on its own; only an explicit
// proposal can do that.
func Fill(candidates []engine.ReadyChunk, mode models.EnergyMode, budgetMin, maxTasks int) Proposal {
	if maxTasks <= 0 || maxTasks > constants.MaxPlanItems {
		maxTasks = constants.MaxPlanItems
	}
	var p Proposal
	remaining := budgetMin
	for _, c := range Rank(candidates, mode) {
		if len(p.Entries) >= maxTasks {
			break
		}
		if c.DurationMin > remaining {
			continue
		}
		p.Entries = append(p.Entries, Entry{ChunkID: c.ID, Reason: "ranked fit"})
		remaining -= c.DurationMin
	}
	return p
}

// DiffProposal reports which entries a proposal would add, which current
// items it keeps, and which it would remove.
func DiffProposal(current []engine.PlanItemView, p Proposal) Diff {
	byChunk := make(map[string]engine.PlanItemView, len(current))
	for _, it := range current {
		byChunk[it.ChunkID] = it
	}
	var d Diff
	for _, entry := range p.Entries {
		if it, ok := byChunk[entry.ChunkID]; ok {
			d.Keep = append(d.Keep, it)
			delete(byChunk, entry.ChunkID)
			continue
		}
		d.Add = append(d.Add, entry)
	}
	for _, it := range current {
		if _, remove := byChunk[it.ChunkID]; remove && !terminalItem(it.Status) {
			d.Remove = append(d.Remove, it)
		}
	}
	return d
}
