// Package interval implements closed-interval arithmetic over float32.
//
// Every operation returns a sound over-approximation: the result interval
// contains every value the corresponding scalar operation can produce when
// its inputs range over the input intervals. Results may be wider than the
// true range, never narrower.
package interval

import (
	"fmt"
	"math"
)

// Interval is a closed range [Min, Max]. A zero-width interval (Min == Max)
// represents a single known value.
type Interval struct {
	Min float32
	Max float32
}

// New returns the interval [min, max]. Panics if min > max.
func New(min, max float32) Interval {
	if min > max {
		panic(fmt.Sprintf("interval: invalid bounds [%v, %v]", min, max))
	}
	return Interval{Min: min, Max: max}
}

// Single returns the zero-width interval [v, v].
func Single(v float32) Interval {
	return Interval{Min: v, Max: v}
}

// FromUnordered returns the interval covering both a and b.
func FromUnordered(a, b float32) Interval {
	if a < b {
		return Interval{Min: a, Max: b}
	}
	return Interval{Min: b, Max: a}
}

// IsSingleValue reports whether the interval has zero width.
func (i Interval) IsSingleValue() bool {
	return i.Min == i.Max
}

// Contains reports whether v lies inside the interval.
func (i Interval) Contains(v float32) bool {
	return v >= i.Min && v <= i.Max
}

// Length returns Max - Min.
func (i Interval) Length() float32 {
	return i.Max - i.Min
}

// Union returns the smallest interval covering both i and o.
func (i Interval) Union(o Interval) Interval {
	return Interval{Min: min32(i.Min, o.Min), Max: max32(i.Max, o.Max)}
}

// String implements the Stringer interface.
func (i Interval) String() string {
	return fmt.Sprintf("[%v, %v]", i.Min, i.Max)
}

// Add returns i + o.
func (i Interval) Add(o Interval) Interval {
	return Interval{Min: i.Min + o.Min, Max: i.Max + o.Max}
}

// Sub returns i - o.
func (i Interval) Sub(o Interval) Interval {
	return Interval{Min: i.Min - o.Max, Max: i.Max - o.Min}
}

// Neg returns -i.
func (i Interval) Neg() Interval {
	return Interval{Min: -i.Max, Max: -i.Min}
}

// Mul returns i * o.
func (i Interval) Mul(o Interval) Interval {
	a := i.Min * o.Min
	b := i.Min * o.Max
	c := i.Max * o.Min
	d := i.Max * o.Max
	return Interval{
		Min: min32(min32(a, b), min32(c, d)),
		Max: max32(max32(a, b), max32(c, d)),
	}
}

// Div returns i / o. If o crosses or touches zero the result is unbounded,
// because the scalar operation diverges near the pole.
func (i Interval) Div(o Interval) Interval {
	if o.Min <= 0 && o.Max >= 0 {
		// The runtime's scalar division maps x/0 to 0, which [-inf, inf]
		// still contains.
		return Interval{Min: float32(math.Inf(-1)), Max: float32(math.Inf(1))}
	}
	a := i.Min / o.Min
	b := i.Min / o.Max
	c := i.Max / o.Min
	d := i.Max / o.Max
	return Interval{
		Min: min32(min32(a, b), min32(c, d)),
		Max: max32(max32(a, b), max32(c, d)),
	}
}

// MinOf returns the interval of min(x, y) for x in i, y in o.
func (i Interval) MinOf(o Interval) Interval {
	return Interval{Min: min32(i.Min, o.Min), Max: min32(i.Max, o.Max)}
}

// MaxOf returns the interval of max(x, y) for x in i, y in o.
func (i Interval) MaxOf(o Interval) Interval {
	return Interval{Min: max32(i.Min, o.Min), Max: max32(i.Max, o.Max)}
}

// Abs returns the interval of |x| for x in i.
func (i Interval) Abs() Interval {
	if i.Min >= 0 {
		return i
	}
	if i.Max <= 0 {
		return i.Neg()
	}
	return Interval{Min: 0, Max: max32(-i.Min, i.Max)}
}

// Floor returns the interval of floor(x) for x in i.
func (i Interval) Floor() Interval {
	return Interval{
		Min: float32(math.Floor(float64(i.Min))),
		Max: float32(math.Floor(float64(i.Max))),
	}
}

// Fract returns the interval of x - floor(x) for x in i.
func (i Interval) Fract() Interval {
	fmin := math.Floor(float64(i.Min))
	fmax := math.Floor(float64(i.Max))
	if fmin != fmax {
		// The interval spans an integer boundary, so the fractional part
		// wraps and covers the whole unit range.
		return Interval{Min: 0, Max: 1}
	}
	return Interval{
		Min: float32(float64(i.Min) - fmin),
		Max: float32(float64(i.Max) - fmax),
	}
}

// Sqrt returns the interval of sqrt(max(x, 0)) for x in i.
func (i Interval) Sqrt() Interval {
	lo := float64(max32(i.Min, 0))
	hi := float64(max32(i.Max, 0))
	return Interval{
		Min: float32(math.Sqrt(lo)),
		Max: float32(math.Sqrt(hi)),
	}
}

// Sin returns the interval of sin(x) for x in i.
func (i Interval) Sin() Interval {
	lo := float64(i.Min)
	hi := float64(i.Max)
	if hi-lo >= 2*math.Pi {
		return Interval{Min: -1, Max: 1}
	}
	smin := math.Sin(lo)
	smax := math.Sin(hi)
	if smin > smax {
		smin, smax = smax, smin
	}
	// A peak of sin lies at pi/2 + 2k*pi, a trough at -pi/2 + 2k*pi.
	if containsPhase(lo, hi, math.Pi/2) {
		smax = 1
	}
	if containsPhase(lo, hi, -math.Pi/2) {
		smin = -1
	}
	return Interval{Min: float32(smin), Max: float32(smax)}
}

// containsPhase reports whether phase + 2k*pi lies in [lo, hi] for some
// integer k.
func containsPhase(lo, hi, phase float64) bool {
	k := math.Ceil((lo - phase) / (2 * math.Pi))
	return phase+2*math.Pi*k <= hi
}

// Clamp returns the interval of clamp(x, lo, hi) for x in i.
func (i Interval) Clamp(lo, hi float32) Interval {
	return Interval{
		Min: clamp32(i.Min, lo, hi),
		Max: clamp32(i.Max, lo, hi),
	}
}

// Lerp returns the interval of a + (b - a) * t for a in i, b in o, t in t.
func (i Interval) Lerp(o, t Interval) Interval {
	one := Single(1)
	return i.Mul(one.Sub(t)).Add(o.Mul(t))
}

// Smoothstep returns the interval of smoothstep(edge0, edge1, x) for x in i.
// The scalar function is monotone in x for fixed edges, so bounds follow
// from the endpoints.
func (i Interval) Smoothstep(edge0, edge1 float32) Interval {
	return FromUnordered(
		smoothstep32(edge0, edge1, i.Min),
		smoothstep32(edge0, edge1, i.Max),
	)
}

// SquaredAbs returns the interval of x*x for x in i.
func (i Interval) SquaredAbs() Interval {
	a := i.Abs()
	return Interval{Min: a.Min * a.Min, Max: a.Max * a.Max}
}

// Distance2 returns the interval of sqrt(dx*dx + dy*dy).
func Distance2(dx, dy Interval) Interval {
	return dx.SquaredAbs().Add(dy.SquaredAbs()).Sqrt()
}

// Distance3 returns the interval of sqrt(dx*dx + dy*dy + dz*dz).
func Distance3(dx, dy, dz Interval) Interval {
	return dx.SquaredAbs().Add(dy.SquaredAbs()).Add(dz.SquaredAbs()).Sqrt()
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func smoothstep32(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp32((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
