package il

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Disassemble renders a resolved, unframed IL byte stream as one
// instruction per line - grounded on kanso's internal/ir/printer.go dump
// format, adapted to a flat opcode stream instead of an SSA/CFG printout.
func Disassemble(raw []byte) string {
	var b strings.Builder
	off := 0
	for off < len(raw) {
		start := off
		op := Op(raw[off])
		off++
		switch op {
		case OpPushConstI64:
			v := int64(binary.LittleEndian.Uint64(raw[off : off+8]))
			off += 8
			fmt.Fprintf(&b, "%04d  push_const %d\n", start, v)
		case OpPushConstF64:
			v := math.Float64frombits(binary.LittleEndian.Uint64(raw[off : off+8]))
			off += 8
			fmt.Fprintf(&b, "%04d  push_const %g\n", start, v)
		case OpPushConstStr:
			s, n := readString(raw[off:])
			off += n
			fmt.Fprintf(&b, "%04d  push_const %q\n", start, s)
		case OpPushConstBool:
			v := raw[off] != 0
			off++
			fmt.Fprintf(&b, "%04d  push_const %v\n", start, v)
		case OpLoadSlot:
			slot, n := readUvarint(raw[off:])
			off += n
			fmt.Fprintf(&b, "%04d  load slot%d\n", start, slot)
		case OpStoreSlot:
			slot, n := readUvarint(raw[off:])
			off += n
			fmt.Fprintf(&b, "%04d  store slot%d\n", start, slot)
		case OpFieldLoad, OpFieldStore:
			offset, n := readUvarint(raw[off:])
			off += n
			fmt.Fprintf(&b, "%04d  %s %d\n", start, op, offset)
		case OpNewArray:
			count, n := readUvarint(raw[off:])
			off += n
			fmt.Fprintf(&b, "%04d  new_array %d\n", start, count)
		case OpNewStruct:
			name, n := readString(raw[off:])
			off += n
			count, n2 := readUvarint(raw[off:])
			off += n2
			fmt.Fprintf(&b, "%04d  new_struct %s %d\n", start, name, count)
		case OpJump, OpBranchIfFalse:
			target := binary.LittleEndian.Uint32(raw[off : off+4])
			off += 4
			fmt.Fprintf(&b, "%04d  %s -> %04d\n", start, op, target)
		case OpCall:
			name, n := readString(raw[off:])
			off += n
			fmt.Fprintf(&b, "%04d  call %s\n", start, name)
		case OpFnBegin:
			name, n := readString(raw[off:])
			off += n
			count, n2 := readUvarint(raw[off:])
			off += n2
			fmt.Fprintf(&b, "%04d  fn_begin %s/%d\n", start, name, count)
		case OpExternDecl:
			name, n := readString(raw[off:])
			off += n
			fmt.Fprintf(&b, "%04d  extern_decl %s\n", start, name)
		default:
			fmt.Fprintf(&b, "%04d  %s\n", start, op)
		}
	}
	return b.String()
}

func readUvarint(b []byte) (uint64, int) {
	v, n := binary.Uvarint(b)
	return v, n
}

func readString(b []byte) (string, int) {
	length, n := binary.Uvarint(b)
	return string(b[n : n+int(length)]), n + int(length)
}
