package vm

import "fmt"

// ---------------------------------------------------------------------------
// Execution engine
// ---------------------------------------------------------------------------

// GenerateSingle evaluates the program at one position and returns the SDF
// value. When useExecutionMap is set and st carries an optimized map, only
// the surviving operations run; the position must then lie inside the box
// that map was built for.
func (r *Runtime) GenerateSingle(st *State, pos Vector3, useExecutionMap bool) float32 {
	var xs, ys, zs, out [1]float32
	xs[0], ys[0], zs[0] = pos.X, pos.Y, pos.Z
	r.GenerateSet(st, xs[:], ys[:], zs[:], out[:], false, useExecutionMap)
	return out[0]
}

// GenerateSet evaluates the program over parallel coordinate arrays,
// writing results into outSDF. All four slices must have the same length,
// at most the buffer size st was prepared with.
//
// skipXZ enables the columnar optimization: when the batch holds one fixed
// (X,Z) column with varying Y, operations that cannot depend on Y are
// evaluated once from the first sample instead of once per element.
//
// useExecutionMap runs the optimized map generated by the last
// GenerateOptimizedExecutionMap call, if any; results are then only valid
// inside the analyzed box.
func (r *Runtime) GenerateSet(st *State, xs, ys, zs, outSDF []float32, skipXZ, useExecutionMap bool) {
	p := &r.program
	r.checkState(st)

	n := len(xs)
	if len(ys) != n || len(zs) != n || len(outSDF) != n {
		panic(fmt.Sprintf("vm: coordinate and output arrays must have equal lengths (%d, %d, %d, %d)",
			len(xs), len(ys), len(zs), len(outSDF)))
	}
	if n == 0 || n > st.bufferSize {
		panic(fmt.Sprintf("vm: batch length %d out of range (buffer size %d)", n, st.bufferSize))
	}

	st.bind(p.xInputAddress, xs)
	st.bind(p.yInputAddress, ys)
	st.bind(p.zInputAddress, zs)
	st.bind(p.sdfOutputAddress, outSDF)

	execMap, xzySplit := st.currentExecutionMap(p, useExecutionMap)

	if skipXZ && n > 1 {
		// The Y-independent prefix produces the same value for every
		// element of a column, so run it on the first sample only and
		// broadcast.
		for _, opAddr := range execMap[:xzySplit] {
			op := r.runOp(st, opAddr, 1)
			broadcast(st, op, n)
		}
		for _, opAddr := range execMap[xzySplit:] {
			r.runOp(st, opAddr, n)
		}
		return
	}

	for _, opAddr := range execMap {
		r.runOp(st, opAddr, n)
	}
}

// bind maps a caller array into the state's buffer address space for the
// duration of one call.
func (s *State) bind(address int, data []float32) {
	if address < 0 {
		return
	}
	b := &s.buffers[address]
	b.Data = data
	b.Size = len(data)
}

// currentExecutionMap picks the optimized map when requested and present,
// otherwise the program's default map.
func (s *State) currentExecutionMap(p *Program, useExecutionMap bool) ([]uint32, int) {
	if useExecutionMap && s.hasExecutionMap {
		return s.executionMap, s.executionMapXZYStartIndex
	}
	return p.defaultExecutionMap, p.xzyStartExecutionMapIndex
}

// runOp decodes and dispatches the operation at opAddr over a batch of n
// values.
func (r *Runtime) runOp(st *State, opAddr uint32, n int) opView {
	op := decodeOp(r.program.operations, opAddr)
	ctx := ProcessBufferContext{
		op:        op,
		buffers:   st.buffers,
		resources: r.program.heapResources,
		n:         n,
	}
	opTable[op.kind].process(&ctx)
	return op
}

// broadcast fills elements [1:n] of the operation's output buffers with
// the value computed for element 0.
func broadcast(st *State, op opView, n int) {
	for i := 0; i < op.outputs.Len(); i++ {
		d := st.buffers[op.outputs.At(i)].Data
		v := d[0]
		for j := 1; j < n; j++ {
			d[j] = v
		}
	}
}
