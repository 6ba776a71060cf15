package scene

import (
	"strings"
	"testing"

	"github.com/chazu/sdfgraph/vm"
)

const sphereScene = `
[scene]
name = "test sphere"

[[nodes]]
name = "x"
kind = "input_x"

[[nodes]]
name = "y"
kind = "input_y"

[[nodes]]
name = "z"
kind = "input_z"

[[nodes]]
name = "ball"
kind = "sdf_sphere"
params = [5.0]

[[nodes]]
name = "out"
kind = "output_sdf"

[[connections]]
from = "x"
to = "ball"

[[connections]]
from = "y"
to = "ball"
to-port = 1

[[connections]]
from = "z"
to = "ball"
to-port = 2

[[connections]]
from = "ball"
to = "out"

[region]
min = [-8.0, -8.0, -8.0]
step = 0.5
size = [32, 32, 32]
`

func TestParseAndBuild(t *testing.T) {
	s, err := Parse([]byte(sphereScene))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Meta.Name != "test sphere" {
		t.Errorf("scene name = %q, want %q", s.Meta.Name, "test sphere")
	}
	if s.Region.Step != 0.5 || s.Region.Size != [3]int{32, 32, 32} {
		t.Errorf("region = %+v, want step 0.5 size 32^3", s.Region)
	}

	g, ids, err := s.BuildGraph()
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("ids = %v, want 5 nodes", ids)
	}

	r := vm.NewRuntime()
	if res := r.Compile(g, false); !res.Success {
		t.Fatalf("compile failed: %s: %s", s.NodeName(ids, res.NodeID), res.Message)
	}
	var st vm.State
	r.PrepareState(&st, 1)
	if got := r.GenerateSingle(&st, vm.Vector3{X: 5, Y: 0, Z: 0}, false); got != 0 {
		t.Errorf("distance on the sphere surface = %v, want 0", got)
	}
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse([]byte(`
[[nodes]]
name = "out"
kind = "output_sdf"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Region.Step != 1 {
		t.Errorf("default step = %v, want 1", s.Region.Step)
	}
	if s.Region.Size != [3]int{16, 16, 16} {
		t.Errorf("default size = %v, want 16^3", s.Region.Size)
	}
}

func TestParseRejections(t *testing.T) {
	cases := map[string]string{
		"unknown kind": `
[[nodes]]
name = "a"
kind = "warp_drive"
`,
		"duplicate name": `
[[nodes]]
name = "a"
kind = "input_x"

[[nodes]]
name = "a"
kind = "input_y"
`,
		"missing name": `
[[nodes]]
kind = "input_x"
`,
		"not toml": `{,`,
	}
	for label, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("%s: expected a parse error", label)
		}
	}
}

func TestBuildRejectsUnknownConnectionEnds(t *testing.T) {
	s, err := Parse([]byte(`
[[nodes]]
name = "x"
kind = "input_x"

[[connections]]
from = "x"
to = "ghost"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, _, err := s.BuildGraph(); err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("build error = %v, should name the unknown node", err)
	}
}

func TestNodeNameFallback(t *testing.T) {
	s := &Scene{}
	if got := s.NodeName(map[string]int{"a": 1}, 1); got != "a" {
		t.Errorf("NodeName(1) = %q, want %q", got, "a")
	}
	if got := s.NodeName(map[string]int{"a": 1}, 9); got != "node 9" {
		t.Errorf("NodeName(9) = %q, want %q", got, "node 9")
	}
}
