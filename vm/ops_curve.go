package vm

import (
	"github.com/chazu/sdfgraph/graph"
	"github.com/chazu/sdfgraph/interval"
)

// ---------------------------------------------------------------------------
// Curve: baked lookup table with a precomputed value range
// ---------------------------------------------------------------------------

const curveBakeResolution = 256

// curveLUT is the heap resource a curve node bakes at compile time: the
// authored control points sampled at fixed resolution, plus the covered
// value range for cheap whole-domain analysis.
type curveLUT struct {
	samples    [curveBakeResolution]float32
	xMin, xMax float32
	valueRange interval.Interval
}

func (l *curveLUT) Release() {}

// sample evaluates the baked curve at x. Inputs outside the authored
// domain clamp to its endpoints.
func (l *curveLUT) sample(x float32) float32 {
	t := (x - l.xMin) / (l.xMax - l.xMin) * (curveBakeResolution - 1)
	t = clampf(t, 0, curveBakeResolution-1)
	i := int(t)
	if i >= curveBakeResolution-1 {
		return l.samples[curveBakeResolution-1]
	}
	return lerpf(l.samples[i], l.samples[i+1], t-float32(i))
}

// rangeOver returns a sound interval of sample(x) for x in in. Sampled
// values interpolate linearly between adjacent table entries, so the
// min/max over the covering entries bounds every interpolated value.
func (l *curveLUT) rangeOver(in interval.Interval) interval.Interval {
	if in.Min <= l.xMin && in.Max >= l.xMax {
		return l.valueRange
	}
	scale := (curveBakeResolution - 1) / (l.xMax - l.xMin)
	i0 := int(clampf((in.Min-l.xMin)*scale, 0, curveBakeResolution-1))
	i1 := int(clampf((in.Max-l.xMin)*scale, 0, curveBakeResolution-1)) + 1
	if i1 >= curveBakeResolution {
		i1 = curveBakeResolution - 1
	}
	out := interval.Single(l.samples[i0])
	for i := i0 + 1; i <= i1; i++ {
		out = out.Union(interval.Single(l.samples[i]))
	}
	return out
}

func bakeCurve(points []float32) *curveLUT {
	l := &curveLUT{
		xMin: points[0],
		xMax: points[len(points)-2],
	}
	for i := range l.samples {
		x := l.xMin + (l.xMax-l.xMin)*float32(i)/(curveBakeResolution-1)
		// Find the segment containing x.
		seg := 0
		for seg+4 < len(points) && points[seg+2] <= x {
			seg += 2
		}
		x0, y0 := points[seg], points[seg+1]
		x1, y1 := points[seg+2], points[seg+3]
		t := clampf((x-x0)/(x1-x0), 0, 1)
		l.samples[i] = lerpf(y0, y1, t)
	}
	l.valueRange = interval.Single(l.samples[0])
	for _, v := range l.samples[1:] {
		l.valueRange = l.valueRange.Union(interval.Single(v))
	}
	return l
}

func init() {
	registerOp(graph.KindCurve, opImpl{
		compile: func(c *CompileContext) {
			n := c.ParamCount()
			if n < 4 || n%2 != 0 {
				c.Fail("curve needs at least two (x, value) control points, got %d parameters", n)
				return
			}
			points := make([]float32, n)
			for i := range points {
				points[i] = c.Param(i)
			}
			for i := 2; i < n; i += 2 {
				if points[i] <= points[i-2] {
					c.Fail("curve control points must have strictly increasing x (%v after %v)",
						points[i], points[i-2])
					return
				}
			}
			c.PutUint(c.AddResource(bakeCurve(points)))
		},
		process: func(c *ProcessBufferContext) {
			lut := c.Resource(c.Params().Uint(0)).(*curveLUT)
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = lut.sample(x[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			lut := c.Resource(c.Params().Uint(0)).(*curveLUT)
			c.SetOutput(0, lut.rangeOver(c.Input(0)))
		},
	})
}
