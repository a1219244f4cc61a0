// Package tick defines the monotonic simulation tick and the timelines built on top of it.
package tick

import "fmt"

// Tick is a wrapping 16-bit simulation step counter. One tick elapses per
// fixed-timestep update.
type Tick uint16

// String renders the tick for log lines.
func (t Tick) String() string {
	return fmt.Sprintf("#%d", uint16(t))
}

// Add returns t shifted forward by delta ticks, wrapping at 65536.
func (t Tick) Add(delta int) Tick {
	return Tick(uint16(int32(uint16(t)) + int32(delta)))
}

// Since returns the signed distance from other to t: positive when t is
// ahead of other, negative when behind. Tick wraparound is handled via
// signed 15-bit distance comparisons.
func (t Tick) Since(other Tick) int32 {
	diff := int32(uint16(t)) - int32(uint16(other))
	switch {
	case diff > 32767:
		diff -= 65536
	case diff < -32768:
		diff += 65536
	}
	return diff
}

// Before reports whether t precedes other on the wrapping timeline.
func (t Tick) Before(other Tick) bool { return t.Since(other) < 0 }

// After reports whether t follows other on the wrapping timeline.
func (t Tick) After(other Tick) bool { return t.Since(other) > 0 }

// Min returns whichever of a, b is earlier on the wrapping timeline.
func Min(a, b Tick) Tick {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns whichever of a, b is later on the wrapping timeline.
func Max(a, b Tick) Tick {
	if a.After(b) {
		return a
	}
	return b
}
