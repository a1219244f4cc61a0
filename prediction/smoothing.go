package prediction

import (
	"math"
	"time"
)

// ErrorDecay models the classic "visual error" correction smoothing: rather
// than snapping a predicted entity to its corrected value in one frame, the
// visual offset left over from the snap decays toward zero over a short
// window, so a rollback correction isn't visible as a pop.
type ErrorDecay struct {
	HalfLife time.Duration
	offset   float32
	age      time.Duration
}

// NewErrorDecay constructs a decay tracker with the given half-life.
func NewErrorDecay(halfLife time.Duration) *ErrorDecay {
	if halfLife <= 0 {
		halfLife = 120 * time.Millisecond
	}
	return &ErrorDecay{HalfLife: halfLife}
}

// Push records a fresh correction: the signed difference between the
// corrected and previously-displayed value. Pushing while a previous
// correction is still decaying adds to the outstanding offset rather than
// replacing it, so back-to-back corrections don't visually cancel out.
func (d *ErrorDecay) Push(delta float32) {
	d.offset += delta
	d.age = 0
}

// Advance steps the decay forward by dt and returns the visual offset that
// should still be added on top of the authoritative value this frame.
func (d *ErrorDecay) Advance(dt time.Duration) float32 {
	if d.offset == 0 {
		return 0
	}
	d.age += dt
	halfLives := float64(d.age) / float64(d.HalfLife)
	remaining := math.Pow(2, -halfLives)
	if remaining < 0.01 {
		d.offset = 0
		return 0
	}
	return d.offset * float32(remaining)
}
