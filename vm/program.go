package vm

import (
	"github.com/chazu/sdfgraph/graph"
)

// ---------------------------------------------------------------------------
// Compiled program data
// ---------------------------------------------------------------------------

// CompilationResult reports the outcome of the last Compile call. A failed
// result carries the offending node's id; the program must not be run.
type CompilationResult struct {
	Success bool
	NodeID  int
	Message string
}

// HeapResource is a compile-time resource owned by the Program, released
// exactly once when the Program is cleared or recompiled.
type HeapResource interface {
	Release()
}

// BufferSpec describes one buffer a State must prepare before the program
// can run.
type BufferSpec struct {
	// Address is the index the buffer lives at in the State.
	Address uint16
	// UsersCount is how many input ports read this buffer.
	UsersCount uint16
	// ConstantValue holds the compile-time constant, if IsConstant.
	ConstantValue float32
	IsConstant    bool
	// IsBinding marks buffers whose storage is the caller's own array
	// (coordinate inputs, SDF output). The runtime never allocates them.
	IsBinding bool
}

// OpInfo describes one operation, in default execution order. The list is
// built at compile time and drives the dynamic execution-map optimization.
type OpInfo struct {
	// OpAddress is the operation's byte offset in the program.
	OpAddress uint32
	// IsOutput marks operations feeding a final output.
	IsOutput bool
	// DebugNodeID refers back to the authored graph node.
	DebugNodeID int
}

// Program is the precalculated result of compiling a graph. It remains
// constant and read-only after compilation, so it can be shared by any
// number of threads, each with its own State.
type Program struct {
	// operations holds serialized operation records, laid out in run order:
	// <kind><input addresses><output addresses><param byte count><params>.
	operations []byte

	// opInfos mirrors defaultExecutionMap with per-operation metadata.
	opInfos []OpInfo

	// defaultExecutionMap lists byte offsets into operations in the order
	// they run by default. A State may carry a pruned override.
	defaultExecutionMap []uint32

	// heapResources are owned compile-time resources, released on clear.
	heapResources []HeapResource

	bufferSpecs []BufferSpec

	// Byte offset from which operations may depend on the Y coordinate.
	// Operations before it never do, which lets callers skip recomputing
	// them while sampling one (X,Z) column.
	xzyStartOpAddress         uint32
	xzyStartExecutionMapIndex int

	// Reserved buffer addresses. -1 when absent.
	xInputAddress    int
	yInputAddress    int
	zInputAddress    int
	sdfOutputAddress int
	sdfOutputNodeID  int

	// bufferCount is the number of distinct buffer addresses; it sizes
	// every State prepared against this program.
	bufferCount int

	// outputPortAddresses associates authored output ports with compiled
	// buffer addresses, for debugging intermediate values.
	outputPortAddresses map[graph.PortLocation]uint16

	// graphDigest identifies the compiled graph. States record it at
	// preparation time so mismatched use can be caught.
	graphDigest [32]byte

	compilationResult CompilationResult
}

func (p *Program) clear() {
	for _, r := range p.heapResources {
		r.Release()
	}
	p.heapResources = nil
	p.operations = p.operations[:0]
	p.opInfos = p.opInfos[:0]
	p.defaultExecutionMap = p.defaultExecutionMap[:0]
	p.bufferSpecs = p.bufferSpecs[:0]
	p.xzyStartOpAddress = 0
	p.xzyStartExecutionMapIndex = 0
	p.xInputAddress = -1
	p.yInputAddress = -1
	p.zInputAddress = -1
	p.sdfOutputAddress = -1
	p.sdfOutputNodeID = -1
	p.bufferCount = 0
	p.outputPortAddresses = nil
	p.graphDigest = [32]byte{}
	p.compilationResult = CompilationResult{}
}

// ---------------------------------------------------------------------------
// Runtime
// ---------------------------------------------------------------------------

// Vector3 is a position in the sampled space.
type Vector3 struct {
	X, Y, Z float32
}

// Runtime compiles one graph at a time and executes the result. Create it
// with NewRuntime.
type Runtime struct {
	program Program
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	r := &Runtime{}
	r.program.clear()
	return r
}

// Clear drops the compiled program and releases its heap resources.
func (r *Runtime) Clear() {
	r.program.clear()
}

// CompilationResult returns the result of the last Compile call.
func (r *Runtime) CompilationResult() CompilationResult {
	return r.program.compilationResult
}

// HasOutput reports whether the compiled program produces an SDF output.
func (r *Runtime) HasOutput() bool {
	return r.program.sdfOutputAddress >= 0
}

// BufferCount returns the number of buffers a prepared State will hold.
func (r *Runtime) BufferCount() int {
	return r.program.bufferCount
}

// GraphDigest returns the digest of the graph the program was compiled
// from, or the zero digest when nothing is compiled.
func (r *Runtime) GraphDigest() [32]byte {
	return r.program.graphDigest
}

// OutputPortAddress returns the buffer address holding the values of the
// given authored output port, for debugging intermediate results.
func (r *Runtime) OutputPortAddress(port graph.PortLocation) (uint16, bool) {
	addr, ok := r.program.outputPortAddresses[port]
	return addr, ok
}
