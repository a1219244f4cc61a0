package networking

import (
	"math"

	"replicore/visibility"
	"replicore/world"
)

// Candidate is one entity's tier classification and estimated wire size for
// a single observer's tick, the input BudgetPlanner ranks and trims.
type Candidate struct {
	Entity world.EntityID
	Tier   visibility.Tier
	Bytes  int
}

// Plan is the outcome of planning one observer's tick: which entities made
// the cut, and how many were dropped per tier once the budget ran out.
type Plan struct {
	Included   []world.EntityID
	BytesUsed  int
	Dropped    map[visibility.Tier]int
	Exhausted  bool
}

// essentialTiers are always included regardless of budget, mirroring the
// teacher's self/nearby tiers that must never be dropped.
var essentialTiers = map[visibility.Tier]bool{
	visibility.TierSelf:   true,
	visibility.TierNearby: true,
}

// BudgetPlanner selects which candidate entities fit within a per-tick byte
// budget, always honoring essential tiers and otherwise admitting lower
// tiers only while bytes remain.
type BudgetPlanner struct {
	maxBytes int
}

// NewBudgetPlanner constructs a planner enforcing the given per-tick budget.
// A non-positive budget disables enforcement.
func NewBudgetPlanner(maxBytes int) *BudgetPlanner {
	if maxBytes <= 0 {
		maxBytes = math.MaxInt
	}
	return &BudgetPlanner{maxBytes: maxBytes}
}

// Plan orders candidates by tier (most interesting first) and includes as
// many as fit the budget, always admitting essential tiers.
func (p *BudgetPlanner) Plan(candidates []Candidate) Plan {
	result := Plan{Dropped: make(map[visibility.Tier]int)}

	byTier := make(map[visibility.Tier][]Candidate)
	for _, c := range candidates {
		byTier[c.Tier] = append(byTier[c.Tier], c)
	}

	order := []visibility.Tier{visibility.TierSelf, visibility.TierNearby, visibility.TierExtended, visibility.TierPassive}
	for _, tier := range order {
		for _, c := range byTier[tier] {
			next := result.BytesUsed + c.Bytes
			if next > p.maxBytes && !essentialTiers[tier] {
				result.Dropped[tier]++
				result.Exhausted = true
				continue
			}
			result.Included = append(result.Included, c.Entity)
			result.BytesUsed = next
		}
	}
	if result.BytesUsed > p.maxBytes {
		result.Exhausted = true
	}
	return result
}
