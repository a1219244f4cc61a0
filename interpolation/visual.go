package interpolation

import "replicore/tick"

// Blend produces a value a fraction of the way from a to b, for frac in
// [0, 1]. Components with protocol.InterpolationLinear supply this via
// their own numeric blending; protocol.InterpolationCustom components
// supply whatever blend makes sense for their shape (e.g. shortest-path
// angle interpolation).
type Blend[C any] func(a, b C, frac float32) C

// Sample resolves the interpolated value of a component at the given
// render tick, using History's bracketing samples and the supplied Blend.
// ok is false only when there is no history at all to sample from.
func Sample[C any](h *History[C], at tick.Tick, blend Blend[C]) (C, bool) {
	before, after, frac, bracketed := h.Bracket(at)
	if !bracketed {
		latestTick, latestValue, ok := h.Latest()
		_ = latestTick
		return latestValue, ok
	}
	return blend(before, after, frac), true
}

// LerpFloat32 linearly interpolates between two float32 values.
func LerpFloat32(a, b, frac float32) float32 {
	return a + (b-a)*frac
}

// Vec3 is a 3-component vector, as used for entity position/velocity
// components.
type Vec3 struct {
	X, Y, Z float32
}

// LerpVec3 blends two Vec3 values, suitable as a protocol.InterpolationLinear Blend.
func LerpVec3(a, b Vec3, frac float32) Vec3 {
	return Vec3{
		X: LerpFloat32(a.X, b.X, frac),
		Y: LerpFloat32(a.Y, b.Y, frac),
		Z: LerpFloat32(a.Z, b.Z, frac),
	}
}
