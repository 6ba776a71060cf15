package vm

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	r := mustCompile(t, buildSphere(t, 5))

	text := r.Disassemble()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != r.OperationCount() {
		t.Errorf("disassembly has %d lines, want %d:\n%s", len(lines), r.OperationCount(), text)
	}
	if !strings.Contains(text, "sdf_sphere") {
		t.Errorf("disassembly missing sdf_sphere:\n%s", text)
	}
	if !strings.Contains(text, "output_sdf") {
		t.Errorf("disassembly missing output_sdf:\n%s", text)
	}
}

func TestDisassembleEmpty(t *testing.T) {
	r := NewRuntime()
	if got := r.Disassemble(); got != "" {
		t.Errorf("disassembly of an empty runtime = %q, want empty", got)
	}
	if got := r.OperationCount(); got != 0 {
		t.Errorf("operation count of an empty runtime = %d, want 0", got)
	}
}
