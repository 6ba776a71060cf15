package vm

import (
	"github.com/chazu/sdfgraph/interval"
)

// ---------------------------------------------------------------------------
// Range analysis and execution-map generation
// ---------------------------------------------------------------------------

// AnalyzeRange computes a sound interval for the SDF output over the axis
// aligned box [minPos, maxPos]: every point evaluation inside the box is
// guaranteed to land inside the returned interval. It also refreshes the
// per-buffer intervals and consumer counters that
// GenerateOptimizedExecutionMap consumes.
func (r *Runtime) AnalyzeRange(st *State, minPos, maxPos Vector3) interval.Interval {
	p := &r.program
	r.checkState(st)

	// Reset per-analysis bookkeeping. Range callbacks may release consumer
	// uses through IgnoreInput, so counters start from the compiled counts.
	for _, spec := range p.bufferSpecs {
		st.buffers[spec.Address].localUsers = int(spec.UsersCount)
		if spec.IsConstant {
			st.ranges[spec.Address] = interval.Single(spec.ConstantValue)
		}
	}

	if p.xInputAddress >= 0 {
		st.ranges[p.xInputAddress] = interval.FromUnordered(minPos.X, maxPos.X)
	}
	if p.yInputAddress >= 0 {
		st.ranges[p.yInputAddress] = interval.FromUnordered(minPos.Y, maxPos.Y)
	}
	if p.zInputAddress >= 0 {
		st.ranges[p.zInputAddress] = interval.FromUnordered(minPos.Z, maxPos.Z)
	}

	for _, opAddr := range p.defaultExecutionMap {
		op := decodeOp(p.operations, opAddr)
		ctx := RangeAnalysisContext{
			op:        op,
			ranges:    st.ranges,
			buffers:   st.buffers,
			resources: p.heapResources,
		}
		opTable[op.kind].analyze(&ctx)
	}

	st.analyzed = true
	return st.ranges[p.sdfOutputAddress]
}

// GenerateOptimizedExecutionMap builds a pruned execution map from the last
// AnalyzeRange call. Operations proven constant over the analyzed box, and
// operations whose result no longer has a live consumer, are dropped; until
// the next map or analysis, evaluations must stay inside that box. In debug
// mode the surviving operations' authored node ids are recorded.
func (r *Runtime) GenerateOptimizedExecutionMap(st *State, debug bool) {
	p := &r.program
	r.checkState(st)

	if !st.analyzed {
		panic("vm: GenerateOptimizedExecutionMap requires a prior AnalyzeRange on this state")
	}

	keep := make([]bool, len(p.opInfos))

	// Reverse walk: every consumer of an operation is decided before the
	// operation itself, so consumer counts are final when inspected.
	for i := len(p.opInfos) - 1; i >= 0; i-- {
		node := &p.opInfos[i]
		op := decodeOp(p.operations, node.OpAddress)
		outAddr := op.outputs.At(0)
		rng := st.ranges[outAddr]

		if node.IsOutput || (st.buffers[outAddr].localUsers > 0 && !rng.IsSingleValue()) {
			keep[i] = true
			continue
		}

		// Pruned: release the use this operation held on each of its input
		// buffers, one per input port as counted at compile time, so
		// producers feeding only pruned operations get pruned in turn.
		// Constant and binding buffers carry no producer and the decrement
		// is inert for them.
		for j := 0; j < op.inputs.Len(); j++ {
			b := &st.buffers[op.inputs.At(j)]
			if b.localUsers > 0 {
				b.localUsers--
			}
		}

		// A consumer may survive and still read this buffer, so a buffer
		// proven constant over the box is filled with that constant.
		if rng.IsSingleValue() {
			b := &st.buffers[outAddr]
			for j := range b.Data {
				b.Data[j] = rng.Min
			}
		}
	}

	st.executionMap = st.executionMap[:0]
	st.debugExecutionMap = nil
	st.executionMapXZYStartIndex = 0
	for i, node := range p.opInfos {
		if !keep[i] {
			continue
		}
		if node.OpAddress < p.xzyStartOpAddress {
			st.executionMapXZYStartIndex++
		}
		st.executionMap = append(st.executionMap, node.OpAddress)
		if debug {
			st.debugExecutionMap = append(st.debugExecutionMap, node.DebugNodeID)
		}
	}
	st.hasExecutionMap = true
}
