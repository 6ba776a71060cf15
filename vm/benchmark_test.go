package vm

import (
	"testing"

	"github.com/chazu/sdfgraph/graph"
)

// benchTerrain is buildTerrain without the testing.T plumbing.
func benchTerrain() *graph.Graph {
	g := graph.New()
	x := g.Add(graph.KindInputX)
	y := g.Add(graph.KindInputY)
	z := g.Add(graph.KindInputZ)
	n := g.Add(graph.KindNoise2D, 1337, 24, 4)
	pl := g.Add(graph.KindSdfPlane, 0)
	add := g.Add(graph.KindAdd)
	out := g.Add(graph.KindOutputSDF)
	g.Connect(graph.PortLocation{NodeID: x.ID}, graph.PortLocation{NodeID: n.ID, Port: 0})
	g.Connect(graph.PortLocation{NodeID: z.ID}, graph.PortLocation{NodeID: n.ID, Port: 1})
	g.Connect(graph.PortLocation{NodeID: y.ID}, graph.PortLocation{NodeID: pl.ID})
	g.Connect(graph.PortLocation{NodeID: pl.ID}, graph.PortLocation{NodeID: add.ID, Port: 0})
	g.Connect(graph.PortLocation{NodeID: n.ID}, graph.PortLocation{NodeID: add.ID, Port: 1})
	g.Connect(graph.PortLocation{NodeID: add.ID}, graph.PortLocation{NodeID: out.ID})
	return g
}

func benchBatch(n int) (xs, ys, zs, out []float32) {
	xs = make([]float32, n)
	ys = make([]float32, n)
	zs = make([]float32, n)
	out = make([]float32, n)
	for i := 0; i < n; i++ {
		xs[i] = float32(i % 16)
		ys[i] = float32(i / 16 % 16)
		zs[i] = float32(i / 256)
	}
	return
}

func BenchmarkCompile(b *testing.B) {
	g := benchTerrain()
	r := NewRuntime()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := r.Compile(g, false); !res.Success {
			b.Fatalf("compile failed: %s", res.Message)
		}
	}
}

func BenchmarkGenerateSingle(b *testing.B) {
	r := NewRuntime()
	if res := r.Compile(benchTerrain(), false); !res.Success {
		b.Fatalf("compile failed: %s", res.Message)
	}
	var st State
	r.PrepareState(&st, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.GenerateSingle(&st, Vector3{3, 1, 7}, false)
	}
}

func BenchmarkGenerateSet4096(b *testing.B) {
	r := NewRuntime()
	if res := r.Compile(benchTerrain(), false); !res.Success {
		b.Fatalf("compile failed: %s", res.Message)
	}
	xs, ys, zs, out := benchBatch(4096)
	var st State
	r.PrepareState(&st, len(xs))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.GenerateSet(&st, xs, ys, zs, out, false, false)
	}
}

func BenchmarkGenerateSetColumnar(b *testing.B) {
	r := NewRuntime()
	if res := r.Compile(benchTerrain(), false); !res.Success {
		b.Fatalf("compile failed: %s", res.Message)
	}
	// One column: x and z fixed, the noise stage runs once per batch.
	const n = 64
	xs, ys, zs, out := benchBatch(n)
	for i := range xs {
		xs[i] = 3
		zs[i] = 7
		ys[i] = float32(i)
	}
	var st State
	r.PrepareState(&st, n)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.GenerateSet(&st, xs, ys, zs, out, true, false)
	}
}

func BenchmarkAnalyzeRange(b *testing.B) {
	r := NewRuntime()
	if res := r.Compile(benchTerrain(), false); !res.Success {
		b.Fatalf("compile failed: %s", res.Message)
	}
	var st State
	r.PrepareState(&st, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.AnalyzeRange(&st, Vector3{0, 0, 0}, Vector3{16, 16, 16})
	}
}
