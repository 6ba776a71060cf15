package vm

import (
	"math/rand"
	"testing"

	"github.com/chazu/sdfgraph/graph"
)

// buildCarvedTerrain combines most of the operation catalogue: a noisy
// plane intersected with a sphere, remapped through a curve.
func buildCarvedTerrain(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	x := g.Add(graph.KindInputX)
	y := g.Add(graph.KindInputY)
	z := g.Add(graph.KindInputZ)
	n := g.Add(graph.KindNoise2D, 7, 32, 3)
	pl := g.Add(graph.KindSdfPlane, 1)
	add := g.Add(graph.KindAdd)
	sp := g.Add(graph.KindSdfSphere, 12)
	mn := g.Add(graph.KindMax) // intersection of terrain and sphere
	cu := g.Add(graph.KindCurve, -20, -20, 0, 0, 20, 20)
	out := g.Add(graph.KindOutputSDF)
	mustConnect(t, g, x.ID, 0, n.ID, 0)
	mustConnect(t, g, z.ID, 0, n.ID, 1)
	mustConnect(t, g, y.ID, 0, pl.ID, 0)
	mustConnect(t, g, pl.ID, 0, add.ID, 0)
	mustConnect(t, g, n.ID, 0, add.ID, 1)
	mustConnect(t, g, x.ID, 0, sp.ID, 0)
	mustConnect(t, g, y.ID, 0, sp.ID, 1)
	mustConnect(t, g, z.ID, 0, sp.ID, 2)
	mustConnect(t, g, add.ID, 0, mn.ID, 0)
	mustConnect(t, g, sp.ID, 0, mn.ID, 1)
	mustConnect(t, g, mn.ID, 0, cu.ID, 0)
	mustConnect(t, g, cu.ID, 0, out.ID, 0)
	return g
}

func TestAnalyzeRangeSoundness(t *testing.T) {
	graphs := map[string]*graph.Graph{
		"sphere":        buildSphere(t, 5),
		"terrain":       buildTerrain(t),
		"carvedTerrain": buildCarvedTerrain(t),
	}
	boxes := [][2]Vector3{
		{{0, 0, 0}, {10, 10, 10}},
		{{-16, -16, -16}, {16, 16, 16}},
		{{3, -2, 7}, {3.5, -1, 8}},
	}

	for name, g := range graphs {
		r := mustCompile(t, g)
		var st State
		r.PrepareState(&st, 1)
		rnd := rand.New(rand.NewSource(7))

		for _, box := range boxes {
			lo, hi := box[0], box[1]
			rng := r.AnalyzeRange(&st, lo, hi)
			if rng.Min > rng.Max {
				t.Fatalf("%s: inverted range %v for box %v..%v", name, rng, lo, hi)
			}
			for i := 0; i < 200; i++ {
				p := Vector3{
					lo.X + rnd.Float32()*(hi.X-lo.X),
					lo.Y + rnd.Float32()*(hi.Y-lo.Y),
					lo.Z + rnd.Float32()*(hi.Z-lo.Z),
				}
				v := r.GenerateSingle(&st, p, false)
				// Allow a little float32 slack around the bounds.
				const eps = 1e-3
				if v < rng.Min-eps || v > rng.Max+eps {
					t.Fatalf("%s: value %v at %v escapes analyzed range %v (box %v..%v)",
						name, v, p, rng, lo, hi)
				}
			}
		}
	}
}

func TestAnalyzeRangeExactOnAffineGraph(t *testing.T) {
	r := mustCompile(t, buildXPlusConstant(t))
	var st State
	r.PrepareState(&st, 1)

	rng := r.AnalyzeRange(&st, Vector3{-2, 0, 0}, Vector3{4, 1, 1})
	if rng.Min != 3 || rng.Max != 9 {
		t.Errorf("range = %v, want [3, 9]", rng)
	}
}

func TestExecutionMapPrunesDeadBranch(t *testing.T) {
	// select(noise, 7, t=y) with threshold 0: for boxes entirely above
	// y=0 the noise branch is dead and must be pruned.
	g := graph.New()
	x := g.Add(graph.KindInputX)
	y := g.Add(graph.KindInputY)
	z := g.Add(graph.KindInputZ)
	n := g.Add(graph.KindNoise2D, 99, 16, 2)
	c := g.Add(graph.KindConstant, 7)
	sel := g.Add(graph.KindSelect, 0)
	out := g.Add(graph.KindOutputSDF)
	mustConnect(t, g, x.ID, 0, n.ID, 0)
	mustConnect(t, g, z.ID, 0, n.ID, 1)
	mustConnect(t, g, n.ID, 0, sel.ID, 0)
	mustConnect(t, g, c.ID, 0, sel.ID, 1)
	mustConnect(t, g, y.ID, 0, sel.ID, 2)
	mustConnect(t, g, sel.ID, 0, out.ID, 0)

	r := mustCompile(t, g)
	if got := r.OperationCount(); got != 3 {
		t.Fatalf("operation count = %d, want 3 (noise, select, output)\n%s", got, r.Disassemble())
	}

	var st State
	r.PrepareState(&st, 8)
	rng := r.AnalyzeRange(&st, Vector3{0, 1, 0}, Vector3{10, 2, 10})
	if rng.Min != 7 || rng.Max != 7 {
		t.Fatalf("range = %v, want [7, 7]", rng)
	}
	r.GenerateOptimizedExecutionMap(&st, true)

	// The select's output interval is a single value, so even the select
	// itself collapses; only the output copy survives.
	if got := len(st.executionMap); got != 1 {
		t.Errorf("optimized map has %d operations, want 1 (ids %v)", got, st.DebugExecutionMap())
	}
	if ids := st.DebugExecutionMap(); len(ids) != 1 || ids[0] != out.ID {
		t.Errorf("debug map = %v, want [%d]", ids, out.ID)
	}

	// Pruned or not, the results inside the analyzed box must agree.
	xs := []float32{0, 3, 6, 9}
	ys := []float32{1, 1.5, 2, 1}
	zs := []float32{10, 7, 4, 0}
	want := make([]float32, 4)
	got := make([]float32, 4)
	r.GenerateSet(&st, xs, ys, zs, want, false, false)
	r.GenerateSet(&st, xs, ys, zs, got, false, true)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("optimized[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExecutionMapPrunesProducerFeedingTwoPorts(t *testing.T) {
	// The squared noise feeds both multiply ports. When the select drops
	// that branch, the whole chain behind it must unwind, including the
	// noise read twice by the multiply.
	g := graph.New()
	x := g.Add(graph.KindInputX)
	y := g.Add(graph.KindInputY)
	z := g.Add(graph.KindInputZ)
	n := g.Add(graph.KindNoise2D, 99, 16, 2)
	sq := g.Add(graph.KindMultiply)
	c := g.Add(graph.KindConstant, 7)
	sel := g.Add(graph.KindSelect, 0)
	out := g.Add(graph.KindOutputSDF)
	mustConnect(t, g, x.ID, 0, n.ID, 0)
	mustConnect(t, g, z.ID, 0, n.ID, 1)
	mustConnect(t, g, n.ID, 0, sq.ID, 0)
	mustConnect(t, g, n.ID, 0, sq.ID, 1)
	mustConnect(t, g, sq.ID, 0, sel.ID, 0)
	mustConnect(t, g, c.ID, 0, sel.ID, 1)
	mustConnect(t, g, y.ID, 0, sel.ID, 2)
	mustConnect(t, g, sel.ID, 0, out.ID, 0)

	r := mustCompile(t, g)
	var st State
	r.PrepareState(&st, 4)
	rng := r.AnalyzeRange(&st, Vector3{0, 1, 0}, Vector3{10, 2, 10})
	if rng.Min != 7 || rng.Max != 7 {
		t.Fatalf("range = %v, want [7, 7]", rng)
	}
	r.GenerateOptimizedExecutionMap(&st, true)

	if ids := st.DebugExecutionMap(); len(ids) != 1 || ids[0] != out.ID {
		t.Errorf("debug map = %v, want [%d]", ids, out.ID)
	}
}

func TestExecutionMapKeepsLiveBranch(t *testing.T) {
	r := mustCompile(t, buildTerrain(t))
	var st State
	r.PrepareState(&st, 16)

	// A box straddling the surface: nothing can be pruned.
	r.AnalyzeRange(&st, Vector3{-8, -8, -8}, Vector3{8, 8, 8})
	r.GenerateOptimizedExecutionMap(&st, false)
	if got, want := len(st.executionMap), r.OperationCount(); got != want {
		t.Errorf("optimized map has %d operations, want %d", got, want)
	}

	// The optimized path must agree with the default path inside the box.
	rnd := rand.New(rand.NewSource(3))
	const n = 16
	xs := make([]float32, n)
	ys := make([]float32, n)
	zs := make([]float32, n)
	want := make([]float32, n)
	got := make([]float32, n)
	for i := 0; i < n; i++ {
		xs[i] = rnd.Float32()*16 - 8
		ys[i] = rnd.Float32()*16 - 8
		zs[i] = rnd.Float32()*16 - 8
	}
	r.GenerateSet(&st, xs, ys, zs, want, false, false)
	r.GenerateSet(&st, xs, ys, zs, got, false, true)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("optimized[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExecutionMapRequiresAnalysis(t *testing.T) {
	r := mustCompile(t, buildSphere(t, 1))
	var st State
	r.PrepareState(&st, 1)

	defer func() {
		if recover() == nil {
			t.Errorf("generating a map without a prior analysis should panic")
		}
	}()
	r.GenerateOptimizedExecutionMap(&st, false)
}

func TestExecutionMapResetByPrepare(t *testing.T) {
	r := mustCompile(t, buildSphere(t, 4))
	var st State
	r.PrepareState(&st, 4)
	r.AnalyzeRange(&st, Vector3{0, 0, 0}, Vector3{1, 1, 1})
	r.GenerateOptimizedExecutionMap(&st, false)
	if !st.hasExecutionMap {
		t.Fatalf("expected an execution map after generation")
	}

	r.PrepareState(&st, 4)
	if st.hasExecutionMap {
		t.Errorf("prepare should drop the previous execution map")
	}

	// With no map generated, asking for one silently uses the default.
	if got := r.GenerateSingle(&st, Vector3{0.5, 0.5, 0.5}, true); got == 0 {
		t.Errorf("generate with stale map request = %v, want a sphere distance", got)
	}
}
