package vm

import (
	"fmt"
	"math"

	"github.com/chazu/sdfgraph/graph"
)

// ---------------------------------------------------------------------------
// Graph compiler
// ---------------------------------------------------------------------------

// Compile translates the graph into bytecode, replacing any previously
// compiled program. Callers must check Success on the result before running.
// When debug is set, the program keeps the port-to-address table used for
// inspecting intermediate values.
func (r *Runtime) Compile(g *graph.Graph, debug bool) CompilationResult {
	r.program.clear()
	result := r.compile(g, debug)
	if !result.Success {
		r.program.clear()
	}
	r.program.compilationResult = result
	return result
}

func failNode(nodeID int, format string, args ...any) CompilationResult {
	return CompilationResult{NodeID: nodeID, Message: fmt.Sprintf(format, args...)}
}

type compiler struct {
	g     *graph.Graph
	debug bool
	p     *Program
	code  codeBuilder

	// order is the topological node order, stably partitioned so every
	// Y-independent node precedes every Y-dependent one.
	order []*graph.Node
	yDep  map[int]bool

	// constPorts maps output ports proven constant at compile time.
	constPorts map[graph.PortLocation]float32

	// addrOf maps every produced output port to its buffer address.
	addrOf map[graph.PortLocation]uint16

	// constAddr dedupes constant buffers by value.
	constAddr map[float32]uint16
}

func (r *Runtime) compile(g *graph.Graph, debug bool) CompilationResult {
	c := &compiler{
		g:          g,
		debug:      debug,
		p:          &r.program,
		constPorts: make(map[graph.PortLocation]float32),
		addrOf:     make(map[graph.PortLocation]uint16),
		constAddr:  make(map[float32]uint16),
	}
	c.p.outputPortAddresses = make(map[graph.PortLocation]uint16)

	if res := c.validateParams(); !res.Success {
		return res
	}
	if res := c.sortNodes(); !res.Success {
		return res
	}
	if res := c.foldConstants(); !res.Success {
		return res
	}
	if res := c.emit(); !res.Success {
		return res
	}

	c.p.operations = c.code.bytes
	c.p.bufferCount = len(c.p.bufferSpecs)
	c.p.graphDigest = g.Digest()

	if c.p.sdfOutputAddress < 0 {
		return failNode(-1, "graph has no SDF output node")
	}
	return CompilationResult{Success: true, NodeID: -1}
}

func (c *compiler) validateParams() CompilationResult {
	for _, n := range c.g.Nodes() {
		info := n.Kind.Info()
		if info.ParamCount >= 0 && len(n.Params) != info.ParamCount {
			return failNode(n.ID, "node %d (%s): expected %d parameters, got %d",
				n.ID, n.Kind, info.ParamCount, len(n.Params))
		}
	}
	return CompilationResult{Success: true}
}

// sortNodes orders nodes so every input is produced before its consumers,
// seeding the ready queue in insertion order so the result is deterministic,
// then stably partitions the result into a Y-independent prefix and a
// Y-dependent suffix. Y-dependence is upward closed along edges, so the
// partition preserves topological validity.
func (c *compiler) sortNodes() CompilationResult {
	nodes := c.g.Nodes()
	byID := make(map[int]*graph.Node, len(nodes))
	indegree := make(map[int]int, len(nodes))
	consumers := make(map[int][]int, len(nodes))

	for _, n := range nodes {
		byID[n.ID] = n
		deps := make(map[int]bool)
		for i := range n.Kind.Info().Inputs {
			if src, ok := n.Source(i); ok {
				deps[src.NodeID] = true
			}
		}
		indegree[n.ID] = len(deps)
		for d := range deps {
			consumers[d] = append(consumers[d], n.ID)
		}
	}

	ready := make([]*graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]*graph.Node, 0, len(nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, consumer := range consumers[n.ID] {
			indegree[consumer]--
			if indegree[consumer] == 0 {
				ready = append(ready, byID[consumer])
			}
		}
	}
	if len(order) < len(nodes) {
		for _, n := range nodes {
			if indegree[n.ID] != 0 {
				return failNode(n.ID, "node %d (%s) is part of a cycle", n.ID, n.Kind)
			}
		}
	}

	c.yDep = make(map[int]bool, len(order))
	for _, n := range order {
		if n.Kind == graph.KindInputY {
			c.yDep[n.ID] = true
			continue
		}
		for i := range n.Kind.Info().Inputs {
			if src, ok := n.Source(i); ok && c.yDep[src.NodeID] {
				c.yDep[n.ID] = true
				break
			}
		}
	}

	c.order = make([]*graph.Node, 0, len(order))
	for _, n := range order {
		if !c.yDep[n.ID] {
			c.order = append(c.order, n)
		}
	}
	for _, n := range order {
		if c.yDep[n.ID] {
			c.order = append(c.order, n)
		}
	}
	return CompilationResult{Success: true}
}

// inputConstant resolves input port i of n to a compile-time constant, if
// it has one: either a constant-folded producer or an unconnected port's
// default value.
func (c *compiler) inputConstant(n *graph.Node, i int) (float32, bool) {
	if src, ok := n.Source(i); ok {
		v, constant := c.constPorts[src]
		return v, constant
	}
	return n.Kind.Info().Inputs[i].Default, true
}

// foldConstants finds nodes whose value is fully determined at compile
// time. Folded nodes are never emitted; their output becomes a constant
// buffer. The folded value is obtained by compiling the node into a scratch
// program and running its process callback once, so folding and normal
// execution can never disagree.
func (c *compiler) foldConstants() CompilationResult {
	for _, n := range c.order {
		info := n.Kind.Info()
		if n.Kind == graph.KindConstant {
			c.constPorts[graph.PortLocation{NodeID: n.ID, Port: 0}] = n.Params[0]
			continue
		}
		if !info.Foldable {
			continue
		}
		inputs := make([]float32, len(info.Inputs))
		allConstant := true
		for i := range info.Inputs {
			v, constant := c.inputConstant(n, i)
			if !constant {
				allConstant = false
				break
			}
			inputs[i] = v
		}
		if !allConstant {
			continue
		}
		value, res := c.foldNode(n, inputs)
		if !res.Success {
			return res
		}
		c.constPorts[graph.PortLocation{NodeID: n.ID, Port: 0}] = value
	}
	return CompilationResult{Success: true}
}

func (c *compiler) foldNode(n *graph.Node, inputs []float32) (float32, CompilationResult) {
	nIn := len(inputs)
	outAddr := uint16(nIn)

	var scratch codeBuilder
	scratch.PutByte(byte(n.Kind))
	for i := range inputs {
		scratch.PutUint16(uint16(i))
	}
	scratch.PutUint16(outAddr)
	lenOffset := scratch.Len()
	scratch.PutUint16(0)
	paramsStart := scratch.Len()

	var resources []HeapResource
	defer func() {
		for _, res := range resources {
			res.Release()
		}
	}()

	ctx := CompileContext{node: n, code: &scratch, resources: &resources}
	if compile := opTable[n.Kind].compile; compile != nil {
		compile(&ctx)
		if ctx.failed {
			return 0, failNode(n.ID, "node %d (%s): %s", n.ID, n.Kind, ctx.message)
		}
	}
	scratch.PatchUint16(lenOffset, uint16(scratch.Len()-paramsStart))

	buffers := make([]Buffer, nIn+1)
	for i, v := range inputs {
		buffers[i] = Buffer{Data: []float32{v}, Size: 1}
	}
	buffers[nIn] = Buffer{Data: make([]float32, 1), Size: 1}

	op := decodeOp(scratch.bytes, 0)
	proc := ProcessBufferContext{op: op, buffers: buffers, resources: resources, n: 1}
	opTable[n.Kind].process(&proc)
	return buffers[nIn].Data[0], CompilationResult{Success: true}
}

func (c *compiler) newBufferSpec(spec BufferSpec) uint16 {
	addr := uint16(len(c.p.bufferSpecs))
	spec.Address = addr
	c.p.bufferSpecs = append(c.p.bufferSpecs, spec)
	return addr
}

func (c *compiler) getConstantAddress(value float32) uint16 {
	if addr, ok := c.constAddr[value]; ok {
		return addr
	}
	addr := c.newBufferSpec(BufferSpec{IsConstant: true, ConstantValue: value})
	c.constAddr[value] = addr
	return addr
}

// emit serializes one bytecode record per non-constant node, in the
// partitioned topological order, and reserves the binding buffers.
func (c *compiler) emit() CompilationResult {
	p := c.p

	// The three coordinate bindings always occupy the first addresses.
	p.xInputAddress = int(c.newBufferSpec(BufferSpec{IsBinding: true}))
	p.yInputAddress = int(c.newBufferSpec(BufferSpec{IsBinding: true}))
	p.zInputAddress = int(c.newBufferSpec(BufferSpec{IsBinding: true}))

	seenY := false
	for _, n := range c.order {
		info := n.Kind.Info()
		port := graph.PortLocation{NodeID: n.ID, Port: 0}

		switch n.Kind {
		case graph.KindInputX:
			c.addrOf[port] = uint16(p.xInputAddress)
			p.outputPortAddresses[port] = uint16(p.xInputAddress)
			continue
		case graph.KindInputY:
			c.addrOf[port] = uint16(p.yInputAddress)
			p.outputPortAddresses[port] = uint16(p.yInputAddress)
			continue
		case graph.KindInputZ:
			c.addrOf[port] = uint16(p.zInputAddress)
			p.outputPortAddresses[port] = uint16(p.zInputAddress)
			continue
		}

		if value, folded := c.constPorts[port]; folded {
			addr := c.getConstantAddress(value)
			c.addrOf[port] = addr
			p.outputPortAddresses[port] = addr
			continue
		}

		// Resolve input addresses.
		inputAddrs := make([]uint16, len(info.Inputs))
		for i := range info.Inputs {
			if src, ok := n.Source(i); ok {
				addr, produced := c.addrOf[src]
				if !produced {
					return failNode(n.ID, "node %d (%s): input %d references unproduced port %v",
						n.ID, n.Kind, i, src)
				}
				inputAddrs[i] = addr
			} else {
				inputAddrs[i] = c.getConstantAddress(info.Inputs[i].Default)
			}
		}

		// Resolve output addresses.
		var outputAddrs []uint16
		if n.Kind == graph.KindOutputSDF {
			if p.sdfOutputAddress >= 0 {
				return failNode(n.ID, "node %d: the graph already has an SDF output (node %d)",
					n.ID, p.sdfOutputNodeID)
			}
			addr := c.newBufferSpec(BufferSpec{IsBinding: true})
			p.sdfOutputAddress = int(addr)
			p.sdfOutputNodeID = n.ID
			outputAddrs = []uint16{addr}
		} else {
			outputAddrs = make([]uint16, len(info.Outputs))
			for i := range info.Outputs {
				addr := c.newBufferSpec(BufferSpec{})
				outputAddrs[i] = addr
				loc := graph.PortLocation{NodeID: n.ID, Port: i}
				c.addrOf[loc] = addr
				p.outputPortAddresses[loc] = addr
			}
		}

		opAddr := uint32(c.code.Len())
		c.code.PutByte(byte(n.Kind))
		for _, a := range inputAddrs {
			c.code.PutUint16(a)
		}
		for _, a := range outputAddrs {
			c.code.PutUint16(a)
		}
		lenOffset := c.code.Len()
		c.code.PutUint16(0)
		paramsStart := c.code.Len()

		ctx := CompileContext{node: n, code: &c.code, resources: &p.heapResources}
		if compile := opTable[n.Kind].compile; compile != nil {
			compile(&ctx)
			if ctx.failed {
				return failNode(n.ID, "node %d (%s): %s", n.ID, n.Kind, ctx.message)
			}
		}
		c.code.PatchUint16(lenOffset, uint16(c.code.Len()-paramsStart))

		opIndex := len(p.opInfos)
		p.defaultExecutionMap = append(p.defaultExecutionMap, opAddr)
		p.opInfos = append(p.opInfos, OpInfo{
			OpAddress:   opAddr,
			IsOutput:    n.Kind == graph.KindOutputSDF,
			DebugNodeID: n.ID,
		})
		// One use per input port. Execution-map pruning releases uses the
		// same way, once per input port of a pruned operation.
		for _, a := range inputAddrs {
			p.bufferSpecs[a].UsersCount++
		}

		if !seenY && c.yDep[n.ID] {
			p.xzyStartOpAddress = opAddr
			p.xzyStartExecutionMapIndex = opIndex
			seenY = true
		}
	}

	if !seenY {
		p.xzyStartOpAddress = uint32(c.code.Len())
		p.xzyStartExecutionMapIndex = len(p.defaultExecutionMap)
	}
	// Buffer addresses are encoded as uint16, so the address space caps the
	// number of buffers a program may use.
	if len(p.bufferSpecs) > math.MaxUint16+1 {
		return failNode(-1, "graph requires %d buffers, more than the %d the bytecode can address",
			len(p.bufferSpecs), math.MaxUint16+1)
	}
	if !c.debug {
		p.outputPortAddresses = nil
	}
	return CompilationResult{Success: true}
}
