package vm

import (
	"github.com/chazu/sdfgraph/graph"
	"github.com/chazu/sdfgraph/interval"
)

// ---------------------------------------------------------------------------
// Signed-distance primitives
// ---------------------------------------------------------------------------

func init() {
	registerOp(graph.KindSdfPlane, opImpl{
		compile: func(c *CompileContext) {
			c.PutFloat(c.Param(0))
		},
		process: func(c *ProcessBufferContext) {
			height := c.Params().Float(0)
			y, out := c.Input(0), c.Output(0)
			for i := range out {
				out[i] = y[i] - height
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			height := c.Params().Float(0)
			c.SetOutput(0, c.Input(0).Sub(interval.Single(height)))
		},
	})

	registerOp(graph.KindSdfSphere, opImpl{
		compile: func(c *CompileContext) {
			radius := c.Param(0)
			if radius < 0 {
				c.Fail("sphere radius is negative (%v)", radius)
				return
			}
			c.PutFloat(radius)
		},
		process: func(c *ProcessBufferContext) {
			radius := c.Params().Float(0)
			x, y, z := c.Input(0), c.Input(1), c.Input(2)
			out := c.Output(0)
			for i := range out {
				out[i] = length3f(x[i], y[i], z[i]) - radius
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			radius := c.Params().Float(0)
			d := interval.Distance3(c.Input(0), c.Input(1), c.Input(2))
			c.SetOutput(0, d.Sub(interval.Single(radius)))
		},
	})

	registerOp(graph.KindSdfBox, opImpl{
		compile: func(c *CompileContext) {
			for i := 0; i < 3; i++ {
				if c.Param(i) < 0 {
					c.Fail("box extent %d is negative (%v)", i, c.Param(i))
					return
				}
			}
			c.PutFloat(c.Param(0))
			c.PutFloat(c.Param(1))
			c.PutFloat(c.Param(2))
		},
		process: func(c *ProcessBufferContext) {
			p := c.Params()
			sx, sy, sz := p.Float(0), p.Float(1), p.Float(2)
			x, y, z := c.Input(0), c.Input(1), c.Input(2)
			out := c.Output(0)
			for i := range out {
				qx := absf(x[i]) - sx
				qy := absf(y[i]) - sy
				qz := absf(z[i]) - sz
				outside := length3f(maxf(qx, 0), maxf(qy, 0), maxf(qz, 0))
				inside := minf(maxf(qx, maxf(qy, qz)), 0)
				out[i] = outside + inside
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			p := c.Params()
			zero := interval.Single(0)
			qx := c.Input(0).Abs().Sub(interval.Single(p.Float(0)))
			qy := c.Input(1).Abs().Sub(interval.Single(p.Float(1)))
			qz := c.Input(2).Abs().Sub(interval.Single(p.Float(2)))
			outside := interval.Distance3(qx.MaxOf(zero), qy.MaxOf(zero), qz.MaxOf(zero))
			inside := qx.MaxOf(qy.MaxOf(qz)).MinOf(zero)
			c.SetOutput(0, outside.Add(inside))
		},
	})

	registerOp(graph.KindSdfTorus, opImpl{
		compile: func(c *CompileContext) {
			major, minor := c.Param(0), c.Param(1)
			if major < 0 || minor < 0 {
				c.Fail("torus radii are negative (%v, %v)", major, minor)
				return
			}
			c.PutFloat(major)
			c.PutFloat(minor)
		},
		process: func(c *ProcessBufferContext) {
			p := c.Params()
			major, minor := p.Float(0), p.Float(1)
			x, y, z := c.Input(0), c.Input(1), c.Input(2)
			out := c.Output(0)
			for i := range out {
				d := length2f(x[i], z[i]) - major
				out[i] = length2f(d, y[i]) - minor
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			p := c.Params()
			major, minor := p.Float(0), p.Float(1)
			d := interval.Distance2(c.Input(0), c.Input(2)).Sub(interval.Single(major))
			out := interval.Distance2(d, c.Input(1)).Sub(interval.Single(minor))
			c.SetOutput(0, out)
		},
	})
}
