// Package volume samples compiled graph programs over regular 3D grids and
// serializes the results.
package volume

import (
	"fmt"

	"github.com/chazu/sdfgraph/vm"
)

// Volume is a dense grid of SDF samples over an axis aligned region.
// Values are stored column by column: all Y samples of one (X, Z) column
// are contiguous, which is also the order the sampler produces them in.
type Volume struct {
	// Origin is the world position of sample (0, 0, 0).
	OriginX float32 `cbor:"ox"`
	OriginY float32 `cbor:"oy"`
	OriginZ float32 `cbor:"oz"`
	// Step is the world distance between neighboring samples.
	Step float32 `cbor:"step"`

	DimX int `cbor:"dx"`
	DimY int `cbor:"dy"`
	DimZ int `cbor:"dz"`

	// GraphDigest identifies the graph this volume was sampled from.
	GraphDigest []byte `cbor:"digest,omitempty"`

	SDF []float32 `cbor:"sdf"`
}

// New returns an empty volume of the given dimensions.
func New(originX, originY, originZ, step float32, dimX, dimY, dimZ int) (*Volume, error) {
	if dimX < 1 || dimY < 1 || dimZ < 1 {
		return nil, fmt.Errorf("volume: invalid dimensions %dx%dx%d", dimX, dimY, dimZ)
	}
	if step <= 0 {
		return nil, fmt.Errorf("volume: invalid step %v", step)
	}
	return &Volume{
		OriginX: originX, OriginY: originY, OriginZ: originZ,
		Step: step,
		DimX: dimX, DimY: dimY, DimZ: dimZ,
		SDF: make([]float32, dimX*dimY*dimZ),
	}, nil
}

// Index returns the flat index of sample (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	return (z*v.DimX+x)*v.DimY + y
}

// At returns the sample at (x, y, z).
func (v *Volume) At(x, y, z int) float32 {
	return v.SDF[v.Index(x, y, z)]
}

// validate checks the internal consistency of a deserialized volume.
func (v *Volume) validate() error {
	if v.DimX < 1 || v.DimY < 1 || v.DimZ < 1 {
		return fmt.Errorf("volume: invalid dimensions %dx%dx%d", v.DimX, v.DimY, v.DimZ)
	}
	if v.Step <= 0 {
		return fmt.Errorf("volume: invalid step %v", v.Step)
	}
	if want := v.DimX * v.DimY * v.DimZ; len(v.SDF) != want {
		return fmt.Errorf("volume: %d samples, dimensions want %d", len(v.SDF), want)
	}
	if len(v.GraphDigest) != 0 && len(v.GraphDigest) != 32 {
		return fmt.Errorf("volume: invalid graph digest length %d", len(v.GraphDigest))
	}
	return nil
}

// Sample fills the volume by evaluating the runtime's compiled program at
// every grid point. The region is analyzed once so the whole pass runs on
// an optimized execution map, and each (X, Z) column is evaluated as one
// batch so Y-independent stages run once per column.
func Sample(r *vm.Runtime, v *Volume) error {
	if !r.HasOutput() {
		return fmt.Errorf("volume: runtime has no compiled program")
	}

	digest := r.GraphDigest()
	v.GraphDigest = digest[:]

	var st vm.State
	r.PrepareState(&st, v.DimY)

	spanX := float32(v.DimX-1) * v.Step
	spanY := float32(v.DimY-1) * v.Step
	spanZ := float32(v.DimZ-1) * v.Step
	r.AnalyzeRange(&st,
		vm.Vector3{X: v.OriginX, Y: v.OriginY, Z: v.OriginZ},
		vm.Vector3{X: v.OriginX + spanX, Y: v.OriginY + spanY, Z: v.OriginZ + spanZ})
	r.GenerateOptimizedExecutionMap(&st, false)

	xs := make([]float32, v.DimY)
	ys := make([]float32, v.DimY)
	zs := make([]float32, v.DimY)
	for i := range ys {
		ys[i] = v.OriginY + float32(i)*v.Step
	}

	for zi := 0; zi < v.DimZ; zi++ {
		wz := v.OriginZ + float32(zi)*v.Step
		for xi := 0; xi < v.DimX; xi++ {
			wx := v.OriginX + float32(xi)*v.Step
			for i := range xs {
				xs[i] = wx
				zs[i] = wz
			}
			col := v.SDF[v.Index(xi, 0, zi) : v.Index(xi, 0, zi)+v.DimY]
			r.GenerateSet(&st, xs, ys, zs, col, true, true)
		}
	}
	return nil
}
