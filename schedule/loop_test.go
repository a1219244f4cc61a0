package schedule

import (
	"testing"
	"time"

	"replicore/tick"
)

func TestStepRunsPhasesInOrder(t *testing.T) {
	var order []string
	phases := Phases{
		PreUpdate:   func(tick.Tick, time.Duration) { order = append(order, "pre") },
		FixedUpdate: func(tick.Tick, time.Duration) { order = append(order, "fixed") },
		Update:      func(tick.Tick, time.Duration) { order = append(order, "update") },
		PostUpdate:  func(tick.Tick, time.Duration) { order = append(order, "post") },
	}
	timeline := tick.NewLocalTimeline(0)
	monitor := NewTickMonitor()
	loop := NewLoop(60, timeline, monitor, phases)

	got := loop.Step()
	if got != 1 {
		t.Fatalf("expected tick 1 after first step, got %v", got)
	}
	want := []string{"pre", "fixed", "update", "post"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if monitor.Snapshot().Samples != 1 {
		t.Fatalf("expected one observed sample, got %d", monitor.Snapshot().Samples)
	}
}

func TestStepDurationDefaultsTo60Hz(t *testing.T) {
	loop := NewLoop(0, nil, nil, Phases{})
	if loop.StepDuration() != time.Second/60 {
		t.Fatalf("expected default 60Hz step, got %v", loop.StepDuration())
	}
}
