package prediction

import (
	"testing"
	"time"
)

func TestErrorDecayDecaysTowardZero(t *testing.T) {
	d := NewErrorDecay(100 * time.Millisecond)
	d.Push(10)
	first := d.Advance(0)
	if first != 10 {
		t.Fatalf("Advance(0) should return the full offset, got %v", first)
	}
	half := d.Advance(100 * time.Millisecond)
	if half <= 4 || half >= 6 {
		t.Fatalf("expected roughly half the offset after one half-life, got %v", half)
	}
	final := d.Advance(10 * time.Second)
	if final != 0 {
		t.Fatalf("expected the offset to fully decay after many half-lives, got %v", final)
	}
}

func TestErrorDecayAccumulatesOnPush(t *testing.T) {
	d := NewErrorDecay(100 * time.Millisecond)
	d.Push(5)
	d.Advance(10 * time.Millisecond)
	d.Push(5)
	if got := d.Advance(0); got != 10 {
		t.Fatalf("back-to-back corrections should accumulate, got %v", got)
	}
}
