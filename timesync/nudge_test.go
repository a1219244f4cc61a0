package timesync

import (
	"testing"

	"replicore/tick"
)

func TestNudgerSpeedsUpWhenBehind(t *testing.T) {
	n := NewNudger()
	scale, event := n.Evaluate(tick.Tick(100), tick.Tick(105))
	if event != nil {
		t.Fatalf("expected no sync event for a small gap, got %+v", event)
	}
	if scale <= 1.0 {
		t.Fatalf("expected time scale above 1.0 when behind target, got %v", scale)
	}
}

func TestNudgerSlowsDownWhenAhead(t *testing.T) {
	n := NewNudger()
	scale, event := n.Evaluate(tick.Tick(105), tick.Tick(100))
	if event != nil {
		t.Fatalf("expected no sync event for a small gap, got %+v", event)
	}
	if scale >= 1.0 {
		t.Fatalf("expected time scale below 1.0 when ahead of target, got %v", scale)
	}
}

func TestNudgerSnapsWhenGapExceedsThreshold(t *testing.T) {
	n := NewNudger()
	local, target := tick.Tick(0), tick.Tick(100)
	_, event := n.Evaluate(local, target)
	if event == nil {
		t.Fatalf("expected a sync event when the gap exceeds the threshold")
	}
	if event.OldTick != local || event.NewTick != target {
		t.Fatalf("expected event %v -> %v, got %+v", local, target, event)
	}
}
