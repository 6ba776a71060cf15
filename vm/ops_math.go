package vm

import (
	"github.com/chazu/sdfgraph/graph"
	"github.com/chazu/sdfgraph/interval"
)

// ---------------------------------------------------------------------------
// Math operations
// ---------------------------------------------------------------------------

func init() {
	registerOp(graph.KindOutputSDF, opImpl{
		numInputs:  1,
		numOutputs: 1,
		process: func(c *ProcessBufferContext) {
			copy(c.Output(0), c.Input(0))
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0))
		},
	})

	registerOp(graph.KindAdd, opImpl{
		process: func(c *ProcessBufferContext) {
			a, b, out := c.Input(0), c.Input(1), c.Output(0)
			for i := range out {
				out[i] = a[i] + b[i]
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Add(c.Input(1)))
		},
	})

	registerOp(graph.KindSubtract, opImpl{
		process: func(c *ProcessBufferContext) {
			a, b, out := c.Input(0), c.Input(1), c.Output(0)
			for i := range out {
				out[i] = a[i] - b[i]
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Sub(c.Input(1)))
		},
	})

	registerOp(graph.KindMultiply, opImpl{
		process: func(c *ProcessBufferContext) {
			a, b, out := c.Input(0), c.Input(1), c.Output(0)
			for i := range out {
				out[i] = a[i] * b[i]
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Mul(c.Input(1)))
		},
	})

	registerOp(graph.KindDivide, opImpl{
		process: func(c *ProcessBufferContext) {
			a, b, out := c.Input(0), c.Input(1), c.Output(0)
			for i := range out {
				// Division by zero yields zero rather than inf, which
				// keeps voxel data finite.
				if b[i] == 0 {
					out[i] = 0
				} else {
					out[i] = a[i] / b[i]
				}
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Div(c.Input(1)))
		},
	})

	registerOp(graph.KindMin, opImpl{
		process: func(c *ProcessBufferContext) {
			a, b, out := c.Input(0), c.Input(1), c.Output(0)
			for i := range out {
				out[i] = minf(a[i], b[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).MinOf(c.Input(1)))
		},
	})

	registerOp(graph.KindMax, opImpl{
		process: func(c *ProcessBufferContext) {
			a, b, out := c.Input(0), c.Input(1), c.Output(0)
			for i := range out {
				out[i] = maxf(a[i], b[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).MaxOf(c.Input(1)))
		},
	})

	registerOp(graph.KindAbs, opImpl{
		process: func(c *ProcessBufferContext) {
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = absf(x[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Abs())
		},
	})

	registerOp(graph.KindFloor, opImpl{
		process: func(c *ProcessBufferContext) {
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = floorf(x[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Floor())
		},
	})

	registerOp(graph.KindFract, opImpl{
		process: func(c *ProcessBufferContext) {
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = fractf(x[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Fract())
		},
	})

	registerOp(graph.KindSqrt, opImpl{
		process: func(c *ProcessBufferContext) {
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = sqrtf(maxf(x[i], 0))
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Sqrt())
		},
	})

	registerOp(graph.KindSin, opImpl{
		process: func(c *ProcessBufferContext) {
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = sinf(x[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Sin())
		},
	})

	registerOp(graph.KindClamp, opImpl{
		compile: func(c *CompileContext) {
			lo, hi := c.Param(0), c.Param(1)
			if lo > hi {
				c.Fail("clamp bounds are inverted (%v > %v)", lo, hi)
				return
			}
			c.PutFloat(lo)
			c.PutFloat(hi)
		},
		process: func(c *ProcessBufferContext) {
			p := c.Params()
			lo, hi := p.Float(0), p.Float(1)
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = clampf(x[i], lo, hi)
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			p := c.Params()
			c.SetOutput(0, c.Input(0).Clamp(p.Float(0), p.Float(1)))
		},
	})

	registerOp(graph.KindMix, opImpl{
		process: func(c *ProcessBufferContext) {
			a, b, t, out := c.Input(0), c.Input(1), c.Input(2), c.Output(0)
			for i := range out {
				out[i] = lerpf(a[i], b[i], t[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			c.SetOutput(0, c.Input(0).Lerp(c.Input(1), c.Input(2)))
		},
	})

	registerOp(graph.KindRemap, opImpl{
		compile: func(c *CompileContext) {
			min0, max0 := c.Param(0), c.Param(1)
			min1, max1 := c.Param(2), c.Param(3)
			if min0 == max0 {
				c.Fail("input range is empty (%v to %v)", min0, max0)
				return
			}
			// Precompute the affine form so the hot loop is one multiply-add.
			scale := (max1 - min1) / (max0 - min0)
			c.PutFloat(scale)
			c.PutFloat(min1 - min0*scale)
		},
		process: func(c *ProcessBufferContext) {
			p := c.Params()
			scale, offset := p.Float(0), p.Float(1)
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = x[i]*scale + offset
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			p := c.Params()
			scale, offset := p.Float(0), p.Float(1)
			out := c.Input(0).Mul(interval.Single(scale)).Add(interval.Single(offset))
			c.SetOutput(0, out)
		},
	})

	registerOp(graph.KindSmoothstep, opImpl{
		compile: func(c *CompileContext) {
			c.PutFloat(c.Param(0))
			c.PutFloat(c.Param(1))
		},
		process: func(c *ProcessBufferContext) {
			p := c.Params()
			edge0, edge1 := p.Float(0), p.Float(1)
			x, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = smoothstepf(edge0, edge1, x[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			p := c.Params()
			c.SetOutput(0, c.Input(0).Smoothstep(p.Float(0), p.Float(1)))
		},
	})

	registerOp(graph.KindSelect, opImpl{
		compile: func(c *CompileContext) {
			c.PutFloat(c.Param(0))
		},
		process: func(c *ProcessBufferContext) {
			threshold := c.Params().Float(0)
			a, b, t, out := c.Input(0), c.Input(1), c.Input(2), c.Output(0)
			for i := range out {
				if t[i] < threshold {
					out[i] = a[i]
				} else {
					out[i] = b[i]
				}
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			threshold := c.Params().Float(0)
			t := c.Input(2)
			switch {
			case t.Max < threshold:
				// Only the first branch can be taken over this box; the
				// other branch's producer becomes prunable.
				c.IgnoreInput(1)
				c.SetOutput(0, c.Input(0))
			case t.Min >= threshold:
				c.IgnoreInput(0)
				c.SetOutput(0, c.Input(1))
			default:
				c.SetOutput(0, c.Input(0).Union(c.Input(1)))
			}
		},
	})

	registerOp(graph.KindDistance2D, opImpl{
		process: func(c *ProcessBufferContext) {
			x0, y0 := c.Input(0), c.Input(1)
			x1, y1 := c.Input(2), c.Input(3)
			out := c.Output(0)
			for i := range out {
				out[i] = length2f(x1[i]-x0[i], y1[i]-y0[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			dx := c.Input(2).Sub(c.Input(0))
			dy := c.Input(3).Sub(c.Input(1))
			c.SetOutput(0, interval.Distance2(dx, dy))
		},
	})

	registerOp(graph.KindDistance3D, opImpl{
		process: func(c *ProcessBufferContext) {
			x0, y0, z0 := c.Input(0), c.Input(1), c.Input(2)
			x1, y1, z1 := c.Input(3), c.Input(4), c.Input(5)
			out := c.Output(0)
			for i := range out {
				out[i] = length3f(x1[i]-x0[i], y1[i]-y0[i], z1[i]-z0[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			dx := c.Input(3).Sub(c.Input(0))
			dy := c.Input(4).Sub(c.Input(1))
			dz := c.Input(5).Sub(c.Input(2))
			c.SetOutput(0, interval.Distance3(dx, dy, dz))
		},
	})
}
