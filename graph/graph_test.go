package graph

import "testing"

func TestAddAssignsSequentialIDs(t *testing.T) {
	g := New()
	a := g.Add(KindInputX)
	b := g.Add(KindConstant, 5)
	if a.ID != 1 || b.ID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", a.ID, b.ID)
	}
	nodes := g.Nodes()
	if len(nodes) != 2 || nodes[0] != a || nodes[1] != b {
		t.Errorf("Nodes() should preserve insertion order")
	}
}

func TestConnectValidation(t *testing.T) {
	g := New()
	x := g.Add(KindInputX)
	add := g.Add(KindAdd)

	if err := g.Connect(PortLocation{x.ID, 0}, PortLocation{add.ID, 0}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if src, ok := add.Source(0); !ok || src.NodeID != x.ID {
		t.Errorf("Source(0) = %v, %v, want node %d", src, ok, x.ID)
	}
	if _, ok := add.Source(1); ok {
		t.Errorf("Source(1) should be unconnected")
	}

	if err := g.Connect(PortLocation{99, 0}, PortLocation{add.ID, 0}); err == nil {
		t.Errorf("connecting from a missing node should fail")
	}
	if err := g.Connect(PortLocation{x.ID, 3}, PortLocation{add.ID, 0}); err == nil {
		t.Errorf("connecting from a missing output port should fail")
	}
	if err := g.Connect(PortLocation{x.ID, 0}, PortLocation{add.ID, 7}); err == nil {
		t.Errorf("connecting to a missing input port should fail")
	}
	// Output nodes have no output ports.
	out := g.Add(KindOutputSDF)
	if err := g.Connect(PortLocation{out.ID, 0}, PortLocation{add.ID, 0}); err == nil {
		t.Errorf("connecting from an output_sdf port should fail")
	}
}

func TestKindByName(t *testing.T) {
	k, ok := KindByName("sdf_sphere")
	if !ok || k != KindSdfSphere {
		t.Errorf("KindByName(sdf_sphere) = %v, %v", k, ok)
	}
	if _, ok := KindByName("bogus"); ok {
		t.Errorf("KindByName(bogus) should not resolve")
	}
	if KindNoise3D.String() != "noise_3d" {
		t.Errorf("String() = %q, want noise_3d", KindNoise3D.String())
	}
}

func buildSphereGraph() *Graph {
	g := New()
	x := g.Add(KindInputX)
	y := g.Add(KindInputY)
	z := g.Add(KindInputZ)
	s := g.Add(KindSdfSphere, 3)
	o := g.Add(KindOutputSDF)
	g.Connect(PortLocation{x.ID, 0}, PortLocation{s.ID, 0})
	g.Connect(PortLocation{y.ID, 0}, PortLocation{s.ID, 1})
	g.Connect(PortLocation{z.ID, 0}, PortLocation{s.ID, 2})
	g.Connect(PortLocation{s.ID, 0}, PortLocation{o.ID, 0})
	return g
}

func TestDigestStability(t *testing.T) {
	a := buildSphereGraph()
	b := buildSphereGraph()
	if a.Digest() != b.Digest() {
		t.Errorf("identical graphs should share a digest")
	}
}

func TestDigestSensitivity(t *testing.T) {
	base := buildSphereGraph()

	changedParam := buildSphereGraph()
	changedParam.Node(4).Params[0] = 7
	if base.Digest() == changedParam.Digest() {
		t.Errorf("changing a parameter should change the digest")
	}

	changedWire := buildSphereGraph()
	changedWire.Connect(PortLocation{2, 0}, PortLocation{4, 0})
	if base.Digest() == changedWire.Digest() {
		t.Errorf("changing a connection should change the digest")
	}

	extraNode := buildSphereGraph()
	extraNode.Add(KindConstant, 1)
	if base.Digest() == extraNode.Digest() {
		t.Errorf("adding a node should change the digest")
	}
}
