// Package scene handles .toml scene descriptions of SDF graphs.
package scene

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/chazu/sdfgraph/graph"
)

// Scene is a graph description plus the region it is meant to be sampled
// over, as authored in a scene.toml file.
type Scene struct {
	Meta        Meta         `toml:"scene"`
	Nodes       []NodeDecl   `toml:"nodes"`
	Connections []Connection `toml:"connections"`
	Region      Region       `toml:"region"`
}

// Meta contains scene metadata.
type Meta struct {
	Name string `toml:"name"`
}

// NodeDecl declares one graph node. Names are scene-local and only used to
// wire connections.
type NodeDecl struct {
	Name   string    `toml:"name"`
	Kind   string    `toml:"kind"`
	Params []float64 `toml:"params"`
}

// Connection wires an output port of one declared node to an input port of
// another. Ports default to 0.
type Connection struct {
	From     string `toml:"from"`
	FromPort int    `toml:"from-port"`
	To       string `toml:"to"`
	ToPort   int    `toml:"to-port"`
}

// Region describes the sampled box: Size samples per axis starting at Min,
// spaced Step apart.
type Region struct {
	Min  [3]float32 `toml:"min"`
	Step float32    `toml:"step"`
	Size [3]int     `toml:"size"`
}

// Load parses a scene description from the given file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: cannot read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a scene description from TOML bytes.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scene: parse error: %w", err)
	}

	// Defaults
	if s.Region.Step == 0 {
		s.Region.Step = 1
	}
	for i, size := range s.Region.Size {
		if size == 0 {
			s.Region.Size[i] = 16
		}
	}

	seen := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("scene: node %d has no name", i)
		}
		if seen[n.Name] {
			return nil, fmt.Errorf("scene: duplicate node name %q", n.Name)
		}
		seen[n.Name] = true
		if _, ok := graph.KindByName(n.Kind); !ok {
			return nil, fmt.Errorf("scene: node %q has unknown kind %q", n.Name, n.Kind)
		}
	}
	return &s, nil
}

// BuildGraph turns the scene into a graph and returns it with the mapping
// from scene-local node names to graph node ids.
func (s *Scene) BuildGraph() (*graph.Graph, map[string]int, error) {
	g := graph.New()
	ids := make(map[string]int, len(s.Nodes))

	for _, decl := range s.Nodes {
		kind, ok := graph.KindByName(decl.Kind)
		if !ok {
			return nil, nil, fmt.Errorf("scene: unknown kind %q", decl.Kind)
		}
		params := make([]float32, len(decl.Params))
		for i, p := range decl.Params {
			params[i] = float32(p)
		}
		ids[decl.Name] = g.Add(kind, params...).ID
	}

	for _, conn := range s.Connections {
		srcID, ok := ids[conn.From]
		if !ok {
			return nil, nil, fmt.Errorf("scene: connection from unknown node %q", conn.From)
		}
		dstID, ok := ids[conn.To]
		if !ok {
			return nil, nil, fmt.Errorf("scene: connection to unknown node %q", conn.To)
		}
		err := g.Connect(
			graph.PortLocation{NodeID: srcID, Port: conn.FromPort},
			graph.PortLocation{NodeID: dstID, Port: conn.ToPort},
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scene: connect %s to %s: %w", conn.From, conn.To, err)
		}
	}
	return g, ids, nil
}

// NodeName returns the scene-local name of a graph node id, for reporting
// compile failures in the author's terms.
func (s *Scene) NodeName(ids map[string]int, nodeID int) string {
	for name, id := range ids {
		if id == nodeID {
			return name
		}
	}
	return fmt.Sprintf("node %d", nodeID)
}
