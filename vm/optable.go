package vm

import (
	"github.com/chazu/sdfgraph/graph"
)

// ---------------------------------------------------------------------------
// Operation dispatch table
// ---------------------------------------------------------------------------

// CompileFunc serializes a node's runtime parameter block and registers any
// heap resources it needs. It may report a node-local failure through the
// context, which aborts compilation.
type CompileFunc func(*CompileContext)

// ProcessFunc computes an operation's output buffer from its input buffers,
// vectorized over the batch length.
type ProcessFunc func(*ProcessBufferContext)

// RangeFunc produces a sound output interval from the input intervals. It
// must be pure apart from IgnoreInput.
type RangeFunc func(*RangeAnalysisContext)

type opImpl struct {
	compile CompileFunc // nil when the kind has no runtime parameters
	process ProcessFunc
	analyze RangeFunc

	numInputs  int
	numOutputs int
}

// opTable is the closed dispatch table, filled once at startup by the
// ops_*.go files. Kinds that never appear as runtime operations (constants
// and coordinate inputs) have no entry.
var opTable [graph.KindCount]opImpl

func registerOp(kind graph.NodeKind, impl opImpl) {
	if opTable[kind].process != nil {
		panic("vm: duplicate operation registration: " + kind.String())
	}
	if impl.process == nil || impl.analyze == nil {
		panic("vm: incomplete operation registration: " + kind.String())
	}
	if impl.numInputs == 0 && impl.numOutputs == 0 {
		info := kind.Info()
		impl.numInputs = len(info.Inputs)
		impl.numOutputs = len(info.Outputs)
	}
	opTable[kind] = impl
}
