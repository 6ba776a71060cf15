// Package vm compiles procedural-generation graphs into linear bytecode
// and executes that bytecode to produce signed-distance values.
//
// This package contains:
//   - Graph compiler: topological ordering, constant folding, buffer
//     allocation, bytecode emission
//   - Point and batched bytecode interpreters
//   - Interval-arithmetic range analyzer and execution-map builder
//   - The operation catalogue (math, SDF primitives, noise, curves)
//
// A Runtime holds one compiled Program, immutable after Compile succeeds
// and shareable across threads. Each thread owns a State: the mutable
// buffer pool every evaluation call works in.
package vm
