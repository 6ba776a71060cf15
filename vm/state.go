package vm

import (
	"fmt"

	"github.com/chazu/sdfgraph/interval"
)

// ---------------------------------------------------------------------------
// State: the mutable working memory of one evaluator
// ---------------------------------------------------------------------------

// Buffer holds one operation's current values. Buffers are addressed
// uniformly whether they are variable, constant or caller-bound.
type Buffer struct {
	// Data holds at least Size values. For binding buffers it is the
	// caller's own array for the duration of one call.
	Data []float32
	// Size is the available count, at most the capacity. All buffers of a
	// State share the same size.
	Size int
	// ConstantValue holds the compile-time constant, if IsConstant.
	ConstantValue float32
	IsConstant    bool
	IsBinding     bool
	// localUsers counts input ports still reading this buffer. Only
	// relevant while building an optimized execution map.
	localUsers int
}

// State is the data a program mutates while it runs. A State is prepared
// against one program and buffer size, and may then be reused across any
// number of evaluations. It is never safe for concurrent use.
type State struct {
	buffers []Buffer
	ranges  []interval.Interval

	// executionMap stores operation addresses; empty until an optimized
	// map is generated.
	executionMap              []uint32
	executionMapXZYStartIndex int
	hasExecutionMap           bool

	// debugExecutionMap stores authored node ids for the surviving
	// operations, populated in debug mode.
	debugExecutionMap []int

	bufferSize    int
	prepared      bool
	analyzed      bool
	programDigest [32]byte
}

// Buffer returns the buffer at the given address.
func (s *State) Buffer(address uint16) *Buffer {
	if int(address) >= len(s.buffers) {
		panic(fmt.Sprintf("vm: buffer address %d out of range (count %d)", address, len(s.buffers)))
	}
	return &s.buffers[address]
}

// Range returns the current analyzed interval of the buffer at the given
// address.
func (s *State) Range(address uint16) interval.Interval {
	if int(address) >= len(s.ranges) {
		panic(fmt.Sprintf("vm: range address %d out of range (count %d)", address, len(s.ranges)))
	}
	return s.ranges[address]
}

// DebugExecutionMap returns the authored node ids of the operations in the
// current optimized execution map. Empty unless the map was generated in
// debug mode.
func (s *State) DebugExecutionMap() []int {
	return s.debugExecutionMap
}

// Clear releases the state's buffers. Binding buffers are caller-owned and
// only unmapped.
func (s *State) Clear() {
	s.buffers = nil
	s.ranges = nil
	s.executionMap = nil
	s.debugExecutionMap = nil
	s.executionMapXZYStartIndex = 0
	s.hasExecutionMap = false
	s.bufferSize = 0
	s.prepared = false
	s.analyzed = false
	s.programDigest = [32]byte{}
}

// PrepareState makes st ready to run the compiled program with batches of
// up to bufferSize values. Call it once after Compile or when the buffer
// size changes; repeated calls with the same program and size keep existing
// allocations and are cheap.
func (r *Runtime) PrepareState(st *State, bufferSize int) {
	p := &r.program
	if !p.compilationResult.Success {
		panic("vm: cannot prepare a state for a program that failed to compile")
	}
	if bufferSize < 1 {
		panic(fmt.Sprintf("vm: invalid buffer size %d", bufferSize))
	}

	if len(st.buffers) != p.bufferCount {
		st.buffers = make([]Buffer, p.bufferCount)
		st.ranges = make([]interval.Interval, p.bufferCount)
	}

	for _, spec := range p.bufferSpecs {
		b := &st.buffers[spec.Address]
		b.IsConstant = spec.IsConstant
		b.IsBinding = spec.IsBinding
		b.ConstantValue = spec.ConstantValue
		b.localUsers = int(spec.UsersCount)

		if spec.IsBinding {
			// Caller storage is mapped in per call.
			b.Data = nil
			b.Size = 0
			continue
		}
		if cap(b.Data) < bufferSize {
			b.Data = make([]float32, bufferSize)
		} else {
			b.Data = b.Data[:cap(b.Data)]
		}
		b.Size = bufferSize
		if spec.IsConstant {
			for i := range b.Data {
				b.Data[i] = spec.ConstantValue
			}
			st.ranges[spec.Address] = interval.Single(spec.ConstantValue)
		}
	}

	st.bufferSize = bufferSize
	st.programDigest = p.graphDigest
	st.prepared = true

	// Any previously generated execution map was built for another
	// program or sizing; fall back to the default map.
	st.executionMap = st.executionMap[:0]
	st.debugExecutionMap = nil
	st.executionMapXZYStartIndex = p.xzyStartExecutionMapIndex
	st.hasExecutionMap = false
	st.analyzed = false
}

// checkState panics when st was not prepared for this runtime's program.
// Such a mismatch is a caller bug, not a recoverable error.
func (r *Runtime) checkState(st *State) {
	p := &r.program
	if !p.compilationResult.Success {
		panic("vm: program is not compiled")
	}
	if !st.prepared || st.programDigest != p.graphDigest || len(st.buffers) != p.bufferCount {
		panic("vm: state was not prepared for this program")
	}
}
