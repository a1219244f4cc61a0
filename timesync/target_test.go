package timesync

import (
	"testing"
	"time"

	"replicore/tick"
)

func TestTargetTickAddsCeiledLeadAndInputDelay(t *testing.T) {
	got := TargetTick(tick.Tick(100), 45*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, 20*time.Millisecond, 2)
	// margin = 75ms, tickDuration = 20ms -> ceil(75/20) = 4, + inputDelay 2 = 6
	want := tick.Tick(106)
	if got != want {
		t.Fatalf("expected tick %v, got %v", want, got)
	}
}

func TestTargetTickZeroTickDurationIsNoop(t *testing.T) {
	got := TargetTick(tick.Tick(5), time.Second, 0, 0, 0, 3)
	if got != tick.Tick(5) {
		t.Fatalf("expected unchanged tick with zero duration, got %v", got)
	}
}
