package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders the compiled operations as one line per record, for
// debugging and tooling. Parameter slots are shown as float32 values with
// their raw bits alongside, since slots may also hold resource indices.
func (r *Runtime) Disassemble() string {
	p := &r.program
	var sb strings.Builder
	for addr := uint32(0); int(addr) < len(p.operations); {
		op := decodeOp(p.operations, addr)
		fmt.Fprintf(&sb, "%04d %-12s in[", addr, op.kind)
		for i := 0; i < op.inputs.Len(); i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d", op.inputs.At(i))
		}
		sb.WriteString("] out[")
		for i := 0; i < op.outputs.Len(); i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d", op.outputs.At(i))
		}
		sb.WriteByte(']')
		if op.params.Count() > 0 {
			sb.WriteString(" params[")
			for i := 0; i < op.params.Count(); i++ {
				if i > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%g(%#08x)", op.params.Float(i), op.params.Uint(i))
			}
			sb.WriteByte(']')
		}
		sb.WriteByte('\n')
		addr = op.end
	}
	return sb.String()
}

// OperationCount returns the number of compiled runtime operations.
func (r *Runtime) OperationCount() int {
	return len(r.program.defaultExecutionMap)
}
