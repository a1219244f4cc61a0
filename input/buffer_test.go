package input

import "testing"

func TestBufferPushRetainsRedundancyWindow(t *testing.T) {
	b := NewBuffer(2)
	b.Push(Sample{Tick: 1})
	b.Push(Sample{Tick: 2})
	window := b.Push(Sample{Tick: 3})
	if len(window) != 2 || window[0].Tick != 2 || window[1].Tick != 3 {
		t.Fatalf("window = %+v, want ticks [2 3]", window)
	}
}

func TestBufferMergeDropsAlreadySeen(t *testing.T) {
	b := NewBuffer(4)
	fresh := b.Merge([]Sample{{Tick: 1}, {Tick: 2}})
	if len(fresh) != 2 {
		t.Fatalf("expected both samples to be fresh on first merge")
	}
	fresh = b.Merge([]Sample{{Tick: 1}, {Tick: 2}, {Tick: 3}})
	if len(fresh) != 1 || fresh[0].Tick != 3 {
		t.Fatalf("expected only tick 3 to be fresh, got %+v", fresh)
	}
}
