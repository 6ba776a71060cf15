package vm

import (
	"github.com/chazu/sdfgraph/graph"
	"github.com/chazu/sdfgraph/interval"
)

// ---------------------------------------------------------------------------
// Fractal value noise
// ---------------------------------------------------------------------------

// noiseSource is the heap resource a noise node owns: a seeded permutation
// table plus the authored fractal settings.
type noiseSource struct {
	perm    [512]uint8
	period  float32
	octaves int
}

func (s *noiseSource) Release() {}

// amplitude is the sum of the octave amplitudes: a sound bound on |noise|.
func (s *noiseSource) amplitude() float32 {
	amp := float32(0)
	a := float32(1)
	for o := 0; o < s.octaves; o++ {
		amp += a
		a *= 0.5
	}
	return amp
}

func newNoiseSource(seed uint32, period float32, octaves int) *noiseSource {
	s := &noiseSource{period: period, octaves: octaves}
	for i := 0; i < 256; i++ {
		s.perm[i] = uint8(i)
	}
	// Fisher-Yates driven by an xorshift stream, so a seed fully
	// determines the table.
	state := seed | 1
	for i := 255; i > 0; i-- {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		j := int(state % uint32(i+1))
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	}
	copy(s.perm[256:], s.perm[:256])
	return s
}

func fade(t float32) float32 {
	return t * t * (3 - 2*t)
}

// corner2 hashes a lattice point into [-1, 1].
func (s *noiseSource) corner2(xi, yi int) float32 {
	h := s.perm[int(s.perm[xi&255])+(yi&255)]
	return float32(h)/127.5 - 1
}

func (s *noiseSource) corner3(xi, yi, zi int) float32 {
	h := s.perm[int(s.perm[int(s.perm[xi&255])+(yi&255)])+(zi&255)]
	return float32(h)/127.5 - 1
}

func (s *noiseSource) value2(x, y float32) float32 {
	xi, yi := int(floorf(x)), int(floorf(y))
	fx, fy := fade(x-floorf(x)), fade(y-floorf(y))
	v00 := s.corner2(xi, yi)
	v10 := s.corner2(xi+1, yi)
	v01 := s.corner2(xi, yi+1)
	v11 := s.corner2(xi+1, yi+1)
	return lerpf(lerpf(v00, v10, fx), lerpf(v01, v11, fx), fy)
}

func (s *noiseSource) value3(x, y, z float32) float32 {
	xi, yi, zi := int(floorf(x)), int(floorf(y)), int(floorf(z))
	fx, fy, fz := fade(x-floorf(x)), fade(y-floorf(y)), fade(z-floorf(z))
	v000 := s.corner3(xi, yi, zi)
	v100 := s.corner3(xi+1, yi, zi)
	v010 := s.corner3(xi, yi+1, zi)
	v110 := s.corner3(xi+1, yi+1, zi)
	v001 := s.corner3(xi, yi, zi+1)
	v101 := s.corner3(xi+1, yi, zi+1)
	v011 := s.corner3(xi, yi+1, zi+1)
	v111 := s.corner3(xi+1, yi+1, zi+1)
	lo := lerpf(lerpf(v000, v100, fx), lerpf(v010, v110, fx), fy)
	hi := lerpf(lerpf(v001, v101, fx), lerpf(v011, v111, fx), fy)
	return lerpf(lo, hi, fz)
}

func (s *noiseSource) fractal2(x, y float32) float32 {
	sum := float32(0)
	freq := 1 / s.period
	amp := float32(1)
	for o := 0; o < s.octaves; o++ {
		sum += amp * s.value2(x*freq, y*freq)
		freq *= 2
		amp *= 0.5
	}
	return sum
}

func (s *noiseSource) fractal3(x, y, z float32) float32 {
	sum := float32(0)
	freq := 1 / s.period
	amp := float32(1)
	for o := 0; o < s.octaves; o++ {
		sum += amp * s.value3(x*freq, y*freq, z*freq)
		freq *= 2
		amp *= 0.5
	}
	return sum
}

// compileNoise validates the shared (seed, period, octaves) parameter
// triple and registers the permutation table resource.
func compileNoise(c *CompileContext) {
	period := c.Param(1)
	if period <= 0 {
		c.Fail("noise period must be positive, got %v", period)
		return
	}
	octaves := int(c.Param(2))
	if octaves < 1 || octaves > 8 {
		c.Fail("noise octaves must be between 1 and 8, got %v", c.Param(2))
		return
	}
	c.PutUint(c.AddResource(newNoiseSource(uint32(c.Param(0)), period, octaves)))
}

func init() {
	registerOp(graph.KindNoise2D, opImpl{
		compile: compileNoise,
		process: func(c *ProcessBufferContext) {
			src := c.Resource(c.Params().Uint(0)).(*noiseSource)
			x, y, out := c.Input(0), c.Input(1), c.Output(0)
			for i := range out {
				out[i] = src.fractal2(x[i], y[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			src := c.Resource(c.Params().Uint(0)).(*noiseSource)
			amp := src.amplitude()
			c.SetOutput(0, interval.New(-amp, amp))
		},
	})

	registerOp(graph.KindNoise3D, opImpl{
		compile: compileNoise,
		process: func(c *ProcessBufferContext) {
			src := c.Resource(c.Params().Uint(0)).(*noiseSource)
			x, y, z, out := c.Input(0), c.Input(1), c.Input(2), c.Output(0)
			for i := range out {
				out[i] = src.fractal3(x[i], y[i], z[i])
			}
		},
		analyze: func(c *RangeAnalysisContext) {
			src := c.Resource(c.Params().Uint(0)).(*noiseSource)
			amp := src.amplitude()
			c.SetOutput(0, interval.New(-amp, amp))
		},
	})
}
