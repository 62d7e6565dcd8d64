package personalization

import "math"

// ClampNumber bounds v into [min, max] and, when step is positive, snaps
// the bounded value to the nearest multiple of step, bounding again in
// case snapping pushed it past a limit. Idempotent: clamping an already
// clamped value returns it unchanged.
func ClampNumber(v, min, max, step float64) float64 {
	v = bound(v, min, max)
	if step > 0 {
		v = math.Round(v/step) * step
		v = bound(v, min, max)
	}
	return v
}

func bound(v, min, max float64) float64 {
	switch {
	case v < min:
		return min
	case v > max:
		return max
	default:
		return v
	}
}
