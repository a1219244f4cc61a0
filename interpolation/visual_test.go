package interpolation

import "testing"

func TestSampleBlendsBetweenBracket(t *testing.T) {
	h := NewHistory[float32](16)
	h.Push(0, 0)
	h.Push(10, 100)
	got, ok := Sample(h, 5, LerpFloat32)
	if !ok {
		t.Fatalf("expected a sample")
	}
	if got < 49 || got > 51 {
		t.Fatalf("Sample() = %v, want ~50", got)
	}
}

func TestLerpVec3(t *testing.T) {
	a := Vec3{X: 0, Y: 0, Z: 0}
	b := Vec3{X: 10, Y: 20, Z: 30}
	mid := LerpVec3(a, b, 0.5)
	if mid.X != 5 || mid.Y != 10 || mid.Z != 15 {
		t.Fatalf("LerpVec3 midpoint = %+v", mid)
	}
}

func TestSampleFallsBackToLatestBeyondHistory(t *testing.T) {
	h := NewHistory[float32](16)
	h.Push(0, 1)
	h.Push(10, 2)
	got, ok := Sample(h, 100, LerpFloat32)
	if !ok || got != 2 {
		t.Fatalf("Sample() beyond history = %v, %v, want 2, true", got, ok)
	}
}
