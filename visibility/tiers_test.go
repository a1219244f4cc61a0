package visibility

import (
	"testing"

	"replicore/world"
)

func TestTierOfClassifiesByDistance(t *testing.T) {
	positions := map[world.EntityID]Position{
		1: {X: 0, Y: 0, Z: 0},
		2: {X: 100, Y: 0, Z: 0},
		3: {X: 1000, Y: 0, Z: 0},
		4: {X: 9000, Y: 0, Z: 0},
	}
	lookup := func(e world.EntityID) (Position, bool) {
		p, ok := positions[e]
		return p, ok
	}
	strat := NewTierStrategy(DefaultRadii(), lookup, TierExtended)
	strat.SetObserverPosition("obs", Position{X: 0, Y: 0, Z: 0})

	if got := strat.TierOf("obs", 1); got != TierSelf {
		t.Fatalf("TierOf(1) = %v, want TierSelf", got)
	}
	if got := strat.TierOf("obs", 2); got != TierNearby {
		t.Fatalf("TierOf(2) = %v, want TierNearby", got)
	}
	if got := strat.TierOf("obs", 3); got != TierExtended {
		t.Fatalf("TierOf(3) = %v, want TierExtended", got)
	}
	if got := strat.TierOf("obs", 4); got != TierPassive {
		t.Fatalf("TierOf(4) = %v, want TierPassive", got)
	}
}

func TestVisibleRespectsMaxTierCutoff(t *testing.T) {
	positions := map[world.EntityID]Position{1: {X: 9000}}
	lookup := func(e world.EntityID) (Position, bool) {
		p, ok := positions[e]
		return p, ok
	}
	strat := NewTierStrategy(DefaultRadii(), lookup, TierNearby)
	strat.SetObserverPosition("obs", Position{})
	if strat.Visible("obs", 1) {
		t.Fatalf("a passive-tier entity should not be visible when maxTier is Nearby")
	}
}

func TestUnknownObserverIsPassive(t *testing.T) {
	strat := NewTierStrategy(DefaultRadii(), func(world.EntityID) (Position, bool) { return Position{}, true }, TierExtended)
	if strat.Visible("ghost", 1) {
		t.Fatalf("an observer with no known position should see nothing")
	}
}
