package constants

const (
	// Chunk duration bounds in minutes. Chunks outside this range are either
	// too small to be worth scheduling or too large to estimate honestly.
	MinChunkDurationMin = 30
	MaxChunkDurationMin = 120

	// Area weight bounds (relative priority).
	MinAreaWeight = 1
	MaxAreaWeight = 10

	// MaxActiveIntentions is the cap on simultaneously active intentions per
	// area, counted only among active-status siblings.
	MaxActiveIntentions = 3

	// MaxPlanItems is the absolute ceiling on items in a single day plan.
	MaxPlanItems = 8

	// NeglectedAfterDays is the age of an area's last touch after which its
	// health is reported as neglected.
	NeglectedAfterDays = 14

	// SplitDurationVariance is the tolerated relative drift between the sum of
	// split-part durations and the original chunk's duration before a warning
	// is logged.
	SplitDurationVariance = 0.2
)

// Utilization bands for a plan's total duration against its time budget.
// Exceeding the budget is allowed; the band is informational only.
const (
	UtilizationNominalMax   = 1.0
	UtilizationNearLimitMax = 1.2
)
