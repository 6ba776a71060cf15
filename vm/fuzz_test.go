package vm

import (
	"testing"

	"github.com/chazu/sdfgraph/graph"
)

// ---------------------------------------------------------------------------
// FuzzCompile: ensure the compiler never panics on arbitrary graphs.
// ---------------------------------------------------------------------------

// fuzzGraph deterministically builds a graph from raw bytes. Invalid
// connections are skipped; everything else is up to the compiler, which
// must reject bad graphs through the compilation result, never by
// panicking.
func fuzzGraph(data []byte) *graph.Graph {
	g := graph.New()
	if len(data) == 0 {
		return g
	}

	nodeCount := int(data[0])%12 + 1
	data = data[1:]

	take := func() byte {
		if len(data) == 0 {
			return 0
		}
		b := data[0]
		data = data[1:]
		return b
	}

	ids := make([]int, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		kind := graph.NodeKind(take()) % graph.KindCount
		info := kind.Info()
		paramCount := info.ParamCount
		if paramCount < 0 {
			paramCount = int(take()) % 9
		}
		params := make([]float32, paramCount)
		for j := range params {
			params[j] = float32(int8(take()))
		}
		ids = append(ids, g.Add(kind, params...).ID)
	}

	// Remaining bytes become connection attempts.
	for len(data) >= 4 {
		src := graph.PortLocation{
			NodeID: ids[int(take())%len(ids)],
			Port:   int(take()) % 3,
		}
		dst := graph.PortLocation{
			NodeID: ids[int(take())%len(ids)],
			Port:   int(take()) % 7,
		}
		g.Connect(src, dst) // invalid ports are rejected, that's fine
	}
	return g
}

func FuzzCompile(f *testing.F) {
	// Seed corpus: empty, a single node, a plausible chain, and byte soup.
	f.Add([]byte{})
	f.Add([]byte{1, byte(graph.KindOutputSDF)})
	f.Add([]byte{
		3, byte(graph.KindInputX), byte(graph.KindAbs), byte(graph.KindOutputSDF),
		0, 0, 1, 0,
		1, 0, 2, 0,
	})
	f.Add([]byte{
		4, byte(graph.KindConstant), 5, byte(graph.KindInputY),
		byte(graph.KindMix), byte(graph.KindOutputSDF),
		0, 0, 2, 0,
		1, 0, 2, 1,
		2, 0, 3, 0,
	})
	f.Add([]byte{255, 254, 253, 252, 251, 250, 0, 1, 2, 3, 4, 5, 6, 7})

	f.Fuzz(func(t *testing.T, data []byte) {
		g := fuzzGraph(data)
		r := NewRuntime()
		res := r.Compile(g, true)
		if !res.Success {
			return
		}
		// Compiled programs must also evaluate without panicking.
		var st State
		r.PrepareState(&st, 4)
		r.GenerateSingle(&st, Vector3{1, 2, 3}, false)
		rng := r.AnalyzeRange(&st, Vector3{-4, -4, -4}, Vector3{4, 4, 4})
		if rng.Min > rng.Max {
			t.Fatalf("inverted analyzed range %v", rng)
		}
		r.GenerateOptimizedExecutionMap(&st, true)
		r.GenerateSingle(&st, Vector3{0, 0, 0}, true)
	})
}
