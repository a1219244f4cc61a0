package networking

import (
	"testing"

	"replicore/visibility"
)

func TestPlanAdmitsEssentialTiersRegardlessOfBudget(t *testing.T) {
	p := NewBudgetPlanner(10)
	plan := p.Plan([]Candidate{
		{Entity: 1, Tier: visibility.TierSelf, Bytes: 50},
		{Entity: 2, Tier: visibility.TierPassive, Bytes: 5},
	})
	if len(plan.Included) != 1 || plan.Included[0] != 1 {
		t.Fatalf("expected only the essential-tier entity included, got %v", plan.Included)
	}
	if plan.Dropped[visibility.TierPassive] != 1 {
		t.Fatalf("expected the passive entity to be dropped, got %+v", plan.Dropped)
	}
	if !plan.Exhausted {
		t.Fatalf("expected the plan to report exhaustion")
	}
}

func TestPlanIncludesEverythingUnderBudget(t *testing.T) {
	p := NewBudgetPlanner(1000)
	plan := p.Plan([]Candidate{
		{Entity: 1, Tier: visibility.TierNearby, Bytes: 100},
		{Entity: 2, Tier: visibility.TierExtended, Bytes: 100},
	})
	if len(plan.Included) != 2 || plan.Exhausted {
		t.Fatalf("expected both entities included without exhaustion, got %+v", plan)
	}
}
