// Package graph holds the authoring-side data model for procedural
// generation graphs: typed nodes wired by ports, ready to be compiled by
// the vm package.
package graph

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/blake3"
)

// PortLocation identifies one port of one node. Whether it names an input
// or an output port depends on where it is used.
type PortLocation struct {
	NodeID int
	Port   int
}

// Node is one operation in the graph.
type Node struct {
	ID     int
	Kind   NodeKind
	Params []float32

	// sources[i] is the output port feeding input port i, or nil when the
	// port is unconnected and falls back to its default value.
	sources []*PortLocation
}

// Source returns the output port connected to input port i, if any.
func (n *Node) Source(i int) (PortLocation, bool) {
	if i < 0 || i >= len(n.sources) || n.sources[i] == nil {
		return PortLocation{}, false
	}
	return *n.sources[i], true
}

// Graph is a DAG of nodes. Nodes keep their insertion order, which the
// compiler uses as a deterministic tie-break.
type Graph struct {
	nodes  map[int]*Node
	order  []int
	nextID int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[int]*Node), nextID: 1}
}

// Add creates a node of the given kind and returns it. Parameter counts are
// validated at compile time, not here, so partially-authored graphs remain
// representable.
func (g *Graph) Add(kind NodeKind, params ...float32) *Node {
	n := &Node{
		ID:      g.nextID,
		Kind:    kind,
		Params:  params,
		sources: make([]*PortLocation, len(kind.Info().Inputs)),
	}
	g.nextID++
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return n
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id int) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Connect wires the output port src to the input port dst. An input port
// accepts at most one producer; reconnecting replaces the previous wire.
func (g *Graph) Connect(src, dst PortLocation) error {
	from := g.nodes[src.NodeID]
	if from == nil {
		return fmt.Errorf("graph: source node %d does not exist", src.NodeID)
	}
	if src.Port < 0 || src.Port >= len(from.Kind.Info().Outputs) {
		return fmt.Errorf("graph: node %d (%s) has no output port %d", src.NodeID, from.Kind, src.Port)
	}
	to := g.nodes[dst.NodeID]
	if to == nil {
		return fmt.Errorf("graph: destination node %d does not exist", dst.NodeID)
	}
	if dst.Port < 0 || dst.Port >= len(to.Kind.Info().Inputs) {
		return fmt.Errorf("graph: node %d (%s) has no input port %d", dst.NodeID, to.Kind, dst.Port)
	}
	loc := src
	to.sources[dst.Port] = &loc
	return nil
}

// Digest returns a BLAKE3 hash of the graph's canonical serialization.
// Two graphs with the same nodes, parameters and wiring produce the same
// digest. The vm package uses it as program identity: a State prepared for
// one program must not be used with another.
func (g *Graph) Digest() [32]byte {
	h := blake3.New()
	var scratch [8]byte

	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:4], v)
		h.Write(scratch[:4])
	}

	putU32(uint32(len(g.order)))
	for _, id := range g.order {
		n := g.nodes[id]
		putU32(uint32(n.ID))
		putU32(uint32(n.Kind))
		putU32(uint32(len(n.Params)))
		for _, p := range n.Params {
			putU32(math.Float32bits(p))
		}
		for _, src := range n.sources {
			if src == nil {
				putU32(0)
				continue
			}
			putU32(1)
			putU32(uint32(src.NodeID))
			putU32(uint32(src.Port))
		}
	}

	var digest [32]byte
	h.Digest().Read(digest[:])
	return digest
}
