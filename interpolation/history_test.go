package interpolation

import "testing"

func TestBracketInterpolatesBetweenSamples(t *testing.T) {
	h := NewHistory[float32](16)
	h.Push(10, 0)
	h.Push(20, 10)

	before, after, frac, ok := h.Bracket(15)
	if !ok {
		t.Fatalf("expected a bracket between two samples")
	}
	if before != 0 || after != 10 {
		t.Fatalf("bracket values = %v, %v", before, after)
	}
	if frac < 0.49 || frac > 0.51 {
		t.Fatalf("frac = %v, want ~0.5", frac)
	}
}

func TestBracketBeforeFirstSample(t *testing.T) {
	h := NewHistory[float32](16)
	h.Push(10, 5)
	_, _, _, ok := h.Bracket(1)
	if ok {
		t.Fatalf("a render tick before the first sample should not bracket")
	}
}

func TestBracketBeyondLastSample(t *testing.T) {
	h := NewHistory[float32](16)
	h.Push(10, 5)
	h.Push(20, 15)
	_, after, _, ok := h.Bracket(30)
	if ok {
		t.Fatalf("a render tick beyond the last sample should not bracket")
	}
	if after != 15 {
		t.Fatalf("expected the latest sample to be returned, got %v", after)
	}
}

func TestPushDropsOutOfOrderSamples(t *testing.T) {
	h := NewHistory[int](16)
	h.Push(10, 1)
	h.Push(5, 2)
	if _, v, _ := h.Latest(); v != 1 {
		t.Fatalf("an older sample must not overwrite the latest, got %v", v)
	}
}

func TestHistoryEvictsBeyondCapacity(t *testing.T) {
	h := NewHistory[int](2)
	h.Push(1, 1)
	h.Push(2, 2)
	h.Push(3, 3)
	_, _, _, ok := h.Bracket(1)
	if ok {
		t.Fatalf("tick 1 should have been evicted once capacity was exceeded")
	}
}
