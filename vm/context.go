package vm

import (
	"fmt"

	"github.com/chazu/sdfgraph/graph"
	"github.com/chazu/sdfgraph/interval"
)

// ---------------------------------------------------------------------------
// Contexts handed to operation-kind callbacks
// ---------------------------------------------------------------------------

// CompileContext is passed to a kind's compile callback. The callback reads
// the node's authored parameters, appends the runtime parameter block and
// optionally registers heap resources.
type CompileContext struct {
	node      *graph.Node
	code      *codeBuilder
	resources *[]HeapResource

	failed  bool
	message string
}

// ParamCount returns the number of authored parameters on the node.
func (c *CompileContext) ParamCount() int {
	return len(c.node.Params)
}

// Param returns authored parameter i.
func (c *CompileContext) Param(i int) float32 {
	if i < 0 || i >= len(c.node.Params) {
		panic(fmt.Sprintf("vm: node %d (%s): parameter index %d out of range (count %d)",
			c.node.ID, c.node.Kind, i, len(c.node.Params)))
	}
	return c.node.Params[i]
}

// PutFloat appends one float32 slot to the operation's parameter block.
func (c *CompileContext) PutFloat(v float32) {
	c.code.PutFloat32(v)
}

// PutUint appends one uint32 slot to the operation's parameter block.
func (c *CompileContext) PutUint(v uint32) {
	c.code.PutUint32(v)
}

// AddResource transfers ownership of a compile-time resource to the
// program and returns its index, typically stored as a parameter slot.
// The program releases it exactly once when cleared or recompiled.
func (c *CompileContext) AddResource(r HeapResource) uint32 {
	*c.resources = append(*c.resources, r)
	return uint32(len(*c.resources) - 1)
}

// Fail reports a fatal, node-local compile error. Compilation aborts and
// the error is surfaced in the CompilationResult with this node's id.
func (c *CompileContext) Fail(format string, args ...any) {
	c.failed = true
	c.message = fmt.Sprintf(format, args...)
}

// ProcessBufferContext is passed to a kind's buffer-processing callback.
// Input and output views cover the current batch length.
type ProcessBufferContext struct {
	op        opView
	buffers   []Buffer
	resources []HeapResource
	n         int
}

// Len returns the batch length.
func (c *ProcessBufferContext) Len() int {
	return c.n
}

// Input returns a read-only view over input buffer i.
func (c *ProcessBufferContext) Input(i int) []float32 {
	return c.buffers[c.op.inputs.At(i)].Data[:c.n]
}

// Output returns a writable view over output buffer i.
func (c *ProcessBufferContext) Output(i int) []float32 {
	return c.buffers[c.op.outputs.At(i)].Data[:c.n]
}

// Params returns the operation's decoded parameter block.
func (c *ProcessBufferContext) Params() Params {
	return c.op.params
}

// Resource returns the heap resource registered at compile time under idx.
func (c *ProcessBufferContext) Resource(idx uint32) HeapResource {
	return c.resources[idx]
}

// RangeAnalysisContext is passed to a kind's range-analysis callback.
type RangeAnalysisContext struct {
	op        opView
	ranges    []interval.Interval
	buffers   []Buffer
	resources []HeapResource
}

// Input returns the current interval of input buffer i.
func (c *RangeAnalysisContext) Input(i int) interval.Interval {
	return c.ranges[c.op.inputs.At(i)]
}

// SetOutput records the interval of output buffer i.
func (c *RangeAnalysisContext) SetOutput(i int, r interval.Interval) {
	c.ranges[c.op.outputs.At(i)] = r
}

// IgnoreInput declares that input i does not contribute to the result over
// the analyzed box, releasing one consumer use of its buffer so the
// producing operation may be pruned from the execution map.
func (c *RangeAnalysisContext) IgnoreInput(i int) {
	b := &c.buffers[c.op.inputs.At(i)]
	if b.localUsers > 0 {
		b.localUsers--
	}
}

// Params returns the operation's decoded parameter block.
func (c *RangeAnalysisContext) Params() Params {
	return c.op.params
}

// Resource returns the heap resource registered at compile time under idx.
func (c *RangeAnalysisContext) Resource(idx uint32) HeapResource {
	return c.resources[idx]
}
