package vm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chazu/sdfgraph/graph"
)

// ---------------------------------------------------------------------------
// Bytecode layout
//
// Each operation is serialized as one record:
//
//	<kind:1><input addresses:2*n><output addresses:2*m><param bytes:2><params>
//
// Address and parameter counts come from the operation table, so records
// carry no explicit counts. All integers are little-endian. Decoding is
// pure offset arithmetic over the byte buffer; nothing aliases raw memory.
// ---------------------------------------------------------------------------

// codeBuilder accumulates the serialized operations buffer.
type codeBuilder struct {
	bytes []byte
}

func (b *codeBuilder) Len() int {
	return len(b.bytes)
}

func (b *codeBuilder) PutByte(v byte) {
	b.bytes = append(b.bytes, v)
}

func (b *codeBuilder) PutUint16(v uint16) {
	b.bytes = binary.LittleEndian.AppendUint16(b.bytes, v)
}

func (b *codeBuilder) PutUint32(v uint32) {
	b.bytes = binary.LittleEndian.AppendUint32(b.bytes, v)
}

func (b *codeBuilder) PutFloat32(v float32) {
	b.PutUint32(math.Float32bits(v))
}

// PatchUint16 overwrites two bytes at a previously reserved offset.
func (b *codeBuilder) PatchUint16(offset int, v uint16) {
	binary.LittleEndian.PutUint16(b.bytes[offset:], v)
}

// addrList is a view over consecutive uint16 buffer addresses inside the
// operations buffer.
type addrList struct {
	data []byte
}

func (l addrList) Len() int {
	return len(l.data) / 2
}

func (l addrList) At(i int) uint16 {
	return binary.LittleEndian.Uint16(l.data[2*i:])
}

// Params is a read-only view over an operation's parameter block. The block
// is a sequence of 4-byte slots, each holding a float32 or a uint32.
type Params struct {
	data []byte
}

// Count returns the number of 4-byte parameter slots.
func (p Params) Count() int {
	return len(p.data) / 4
}

// Float reads slot i as a float32.
func (p Params) Float(i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(p.data[4*i:]))
}

// Uint reads slot i as a uint32.
func (p Params) Uint(i int) uint32 {
	return binary.LittleEndian.Uint32(p.data[4*i:])
}

// opView is the decoded form of one operation record. Its fields reference
// the program's byte buffer directly; decoding performs no copies.
type opView struct {
	kind    graph.NodeKind
	inputs  addrList
	outputs addrList
	params  Params
	// end is the byte offset of the next record.
	end uint32
}

// decodeOp decodes the record starting at addr. Malformed offsets indicate
// a caller bug and panic.
func decodeOp(code []byte, addr uint32) opView {
	if int(addr) >= len(code) {
		panic(fmt.Sprintf("vm: operation address %d out of range (program size %d)", addr, len(code)))
	}
	kind := graph.NodeKind(code[addr])
	impl := &opTable[kind]
	if impl.process == nil {
		panic(fmt.Sprintf("vm: operation %s at address %d has no implementation", kind, addr))
	}
	off := int(addr) + 1
	in := addrList{data: code[off : off+2*impl.numInputs]}
	off += 2 * impl.numInputs
	out := addrList{data: code[off : off+2*impl.numOutputs]}
	off += 2 * impl.numOutputs
	paramLen := int(binary.LittleEndian.Uint16(code[off:]))
	off += 2
	params := Params{data: code[off : off+paramLen]}
	off += paramLen
	return opView{
		kind:    kind,
		inputs:  in,
		outputs: out,
		params:  params,
		end:     uint32(off),
	}
}
