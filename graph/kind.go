package graph

import "fmt"

// NodeKind identifies one kind of operation node. The set is closed: the
// compiler and both interpreters dispatch on it through a table built at
// startup.
type NodeKind uint8

const (
	KindConstant NodeKind = iota
	KindInputX
	KindInputY
	KindInputZ
	KindOutputSDF
	KindAdd
	KindSubtract
	KindMultiply
	KindDivide
	KindMin
	KindMax
	KindAbs
	KindFloor
	KindFract
	KindSqrt
	KindSin
	KindClamp
	KindMix
	KindRemap
	KindSmoothstep
	KindSelect
	KindDistance2D
	KindDistance3D
	KindSdfPlane
	KindSdfSphere
	KindSdfBox
	KindSdfTorus
	KindCurve
	KindNoise2D
	KindNoise3D

	// KindCount is the number of node kinds. Not a valid kind.
	KindCount
)

// PortSpec describes one input port: its name and the constant value used
// when nothing is connected to it.
type PortSpec struct {
	Name    string
	Default float32
}

// KindInfo holds the static metadata of a node kind.
type KindInfo struct {
	Name    string
	Inputs  []PortSpec
	Outputs []string

	// ParamCount is the number of authored parameters the kind expects.
	// -1 means variable (validated by the kind's compile callback).
	ParamCount int

	// Foldable kinds with all-constant inputs are evaluated at compile time
	// and never emitted as runtime operations.
	Foldable bool
}

var kindTable = [KindCount]KindInfo{
	KindConstant:   {Name: "constant", Outputs: []string{"value"}, ParamCount: 1},
	KindInputX:     {Name: "input_x", Outputs: []string{"x"}},
	KindInputY:     {Name: "input_y", Outputs: []string{"y"}},
	KindInputZ:     {Name: "input_z", Outputs: []string{"z"}},
	KindOutputSDF:  {Name: "output_sdf", Inputs: []PortSpec{{Name: "sdf"}}},
	KindAdd:        {Name: "add", Inputs: []PortSpec{{Name: "a"}, {Name: "b"}}, Outputs: []string{"out"}, Foldable: true},
	KindSubtract:   {Name: "subtract", Inputs: []PortSpec{{Name: "a"}, {Name: "b"}}, Outputs: []string{"out"}, Foldable: true},
	KindMultiply:   {Name: "multiply", Inputs: []PortSpec{{Name: "a"}, {Name: "b"}}, Outputs: []string{"out"}, Foldable: true},
	KindDivide:     {Name: "divide", Inputs: []PortSpec{{Name: "a"}, {Name: "b", Default: 1}}, Outputs: []string{"out"}, Foldable: true},
	KindMin:        {Name: "min", Inputs: []PortSpec{{Name: "a"}, {Name: "b"}}, Outputs: []string{"out"}, Foldable: true},
	KindMax:        {Name: "max", Inputs: []PortSpec{{Name: "a"}, {Name: "b"}}, Outputs: []string{"out"}, Foldable: true},
	KindAbs:        {Name: "abs", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, Foldable: true},
	KindFloor:      {Name: "floor", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, Foldable: true},
	KindFract:      {Name: "fract", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, Foldable: true},
	KindSqrt:       {Name: "sqrt", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, Foldable: true},
	KindSin:        {Name: "sin", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, Foldable: true},
	KindClamp:      {Name: "clamp", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, ParamCount: 2, Foldable: true},
	KindMix:        {Name: "mix", Inputs: []PortSpec{{Name: "a"}, {Name: "b"}, {Name: "ratio", Default: 0.5}}, Outputs: []string{"out"}, Foldable: true},
	KindRemap:      {Name: "remap", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, ParamCount: 4, Foldable: true},
	KindSmoothstep: {Name: "smoothstep", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, ParamCount: 2, Foldable: true},
	KindSelect:     {Name: "select", Inputs: []PortSpec{{Name: "a"}, {Name: "b"}, {Name: "t"}}, Outputs: []string{"out"}, ParamCount: 1, Foldable: true},
	KindDistance2D: {Name: "distance_2d", Inputs: []PortSpec{{Name: "x0"}, {Name: "y0"}, {Name: "x1"}, {Name: "y1"}}, Outputs: []string{"out"}, Foldable: true},
	KindDistance3D: {Name: "distance_3d", Inputs: []PortSpec{{Name: "x0"}, {Name: "y0"}, {Name: "z0"}, {Name: "x1"}, {Name: "y1"}, {Name: "z1"}}, Outputs: []string{"out"}, Foldable: true},
	KindSdfPlane:   {Name: "sdf_plane", Inputs: []PortSpec{{Name: "y"}}, Outputs: []string{"sdf"}, ParamCount: 1, Foldable: true},
	KindSdfSphere:  {Name: "sdf_sphere", Inputs: []PortSpec{{Name: "x"}, {Name: "y"}, {Name: "z"}}, Outputs: []string{"sdf"}, ParamCount: 1, Foldable: true},
	KindSdfBox:     {Name: "sdf_box", Inputs: []PortSpec{{Name: "x"}, {Name: "y"}, {Name: "z"}}, Outputs: []string{"sdf"}, ParamCount: 3, Foldable: true},
	KindSdfTorus:   {Name: "sdf_torus", Inputs: []PortSpec{{Name: "x"}, {Name: "y"}, {Name: "z"}}, Outputs: []string{"sdf"}, ParamCount: 2, Foldable: true},
	KindCurve:      {Name: "curve", Inputs: []PortSpec{{Name: "x"}}, Outputs: []string{"out"}, ParamCount: -1, Foldable: true},
	KindNoise2D:    {Name: "noise_2d", Inputs: []PortSpec{{Name: "x"}, {Name: "y"}}, Outputs: []string{"out"}, ParamCount: 3},
	KindNoise3D:    {Name: "noise_3d", Inputs: []PortSpec{{Name: "x"}, {Name: "y"}, {Name: "z"}}, Outputs: []string{"out"}, ParamCount: 3},
}

var kindsByName = func() map[string]NodeKind {
	m := make(map[string]NodeKind, KindCount)
	for k := NodeKind(0); k < KindCount; k++ {
		m[kindTable[k].Name] = k
	}
	return m
}()

// Info returns the static metadata of the kind.
func (k NodeKind) Info() KindInfo {
	if k >= KindCount {
		panic(fmt.Sprintf("graph: invalid node kind %d", k))
	}
	return kindTable[k]
}

// String implements the Stringer interface.
func (k NodeKind) String() string {
	if k >= KindCount {
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
	return kindTable[k].Name
}

// KindByName looks up a node kind by its catalogue name.
func KindByName(name string) (NodeKind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}
