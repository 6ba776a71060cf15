package vm

import "math"

// Scalar float32 helpers shared by the operation callbacks. Their interval
// counterparts in the interval package must stay in sync: a process
// callback and its range callback describe the same function.

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorf(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

func fractf(v float32) float32 {
	return v - floorf(v)
}

func sqrtf(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func sinf(v float32) float32 {
	return float32(math.Sin(float64(v)))
}

func lerpf(a, b, t float32) float32 {
	return a + (b-a)*t
}

func smoothstepf(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clampf((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

func length2f(x, y float32) float32 {
	return sqrtf(x*x + y*y)
}

func length3f(x, y, z float32) float32 {
	return sqrtf(x*x + y*y + z*z)
}
