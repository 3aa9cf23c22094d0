package il

import (
	"encoding/binary"
	"fmt"
	"math"
)

// fixup is a forward reference: a 4-byte operand slot at Offset that must be
// patched to the byte offset of LabelID once that label binds.
type fixup struct {
	Offset  int
	LabelID int
}

// Stream is the append-only IL byte buffer plus its label/fixup tables
// (spec.md section 3's IlStream). Labels are allocated sequentially via
// NewLabel and bound exactly once via BindLabel; Resolve back-patches every
// fixup once all labels are bound, leaving no unresolved reference in the
// emitted bytes (spec.md section 6).
type Stream struct {
	buf       []byte
	labels    map[int]int // label id -> byte offset, once bound
	nextLabel int
	fixups    []fixup
}

// New returns an empty Stream.
func New() *Stream {
	return &Stream{labels: make(map[int]int)}
}

// Len reports the number of bytes emitted so far.
func (s *Stream) Len() int { return len(s.buf) }

func (s *Stream) writeByte(b byte) { s.buf = append(s.buf, b) }

func (s *Stream) writeUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	s.buf = append(s.buf, tmp[:n]...)
}

func (s *Stream) writeString(str string) {
	s.writeUvarint(uint64(len(str)))
	s.buf = append(s.buf, str...)
}

// --- constants ---

func (s *Stream) PushConstI64(v int64) {
	s.writeByte(byte(OpPushConstI64))
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	s.buf = append(s.buf, tmp[:]...)
}

func (s *Stream) PushConstF64(v float64) {
	s.writeByte(byte(OpPushConstF64))
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	s.buf = append(s.buf, tmp[:]...)
}

func (s *Stream) PushConstStr(v string) {
	s.writeByte(byte(OpPushConstStr))
	s.writeString(v)
}

func (s *Stream) PushConstBool(v bool) {
	s.writeByte(byte(OpPushConstBool))
	if v {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}

// --- slots ---

func (s *Stream) LoadSlot(slot int)  { s.writeByte(byte(OpLoadSlot)); s.writeUvarint(uint64(slot)) }
func (s *Stream) StoreSlot(slot int) { s.writeByte(byte(OpStoreSlot)); s.writeUvarint(uint64(slot)) }

// --- primitive ops, no operand ---

func (s *Stream) op0(o Op) { s.writeByte(byte(o)) }

func (s *Stream) Add()   { s.op0(OpAdd) }
func (s *Stream) Sub()   { s.op0(OpSub) }
func (s *Stream) Mul()   { s.op0(OpMul) }
func (s *Stream) Div()   { s.op0(OpDiv) }
func (s *Stream) Mod()   { s.op0(OpMod) }
func (s *Stream) Neg()   { s.op0(OpNeg) }
func (s *Stream) Not()   { s.op0(OpNot) }
func (s *Stream) Eq()    { s.op0(OpEq) }
func (s *Stream) NotEq() { s.op0(OpNotEq) }
func (s *Stream) Lt()    { s.op0(OpLt) }
func (s *Stream) LtEq()  { s.op0(OpLtEq) }
func (s *Stream) Gt()    { s.op0(OpGt) }
func (s *Stream) GtEq()  { s.op0(OpGtEq) }
func (s *Stream) And()   { s.op0(OpAnd) }
func (s *Stream) Or()    { s.op0(OpOr) }

// --- aggregates ---

func (s *Stream) NewArray(count int) { s.writeByte(byte(OpNewArray)); s.writeUvarint(uint64(count)) }
func (s *Stream) IndexLoad()         { s.op0(OpIndexLoad) }
func (s *Stream) IndexStore()        { s.op0(OpIndexStore) }
func (s *Stream) FieldLoad(offset int) {
	s.writeByte(byte(OpFieldLoad))
	s.writeUvarint(uint64(offset))
}
func (s *Stream) FieldStore(offset int) {
	s.writeByte(byte(OpFieldStore))
	s.writeUvarint(uint64(offset))
}
func (s *Stream) NewStruct(name string, fieldCount int) {
	s.writeByte(byte(OpNewStruct))
	s.writeString(name)
	s.writeUvarint(uint64(fieldCount))
}

// --- labels, control flow ---

// NewLabel allocates a fresh label id. The label is unbound until BindLabel
// is called with the same id.
func (s *Stream) NewLabel() int {
	id := s.nextLabel
	s.nextLabel++
	return id
}

// BindLabel fixes labelID to the current byte offset. Emits no bytes of its
// own (a label marker is a compile-time position, consumed at emit time per
// spec.md section 6, not a runtime instruction).
func (s *Stream) BindLabel(labelID int) {
	s.labels[labelID] = len(s.buf)
}

// Jump emits an unconditional jump to labelID, registering a fixup if the
// label is not yet bound.
func (s *Stream) Jump(labelID int) {
	s.writeByte(byte(OpJump))
	s.emitLabelOperand(labelID)
}

// BranchIfFalse emits a conditional jump, consuming the top-of-stack boolean.
func (s *Stream) BranchIfFalse(labelID int) {
	s.writeByte(byte(OpBranchIfFalse))
	s.emitLabelOperand(labelID)
}

func (s *Stream) emitLabelOperand(labelID int) {
	offset := len(s.buf)
	var tmp [4]byte
	if resolved, ok := s.labels[labelID]; ok {
		binary.LittleEndian.PutUint32(tmp[:], uint32(resolved))
	}
	s.buf = append(s.buf, tmp[:]...)
	if _, ok := s.labels[labelID]; !ok {
		s.fixups = append(s.fixups, fixup{Offset: offset, LabelID: labelID})
	}
}

// --- calls, functions, return ---

func (s *Stream) Call(mangledName string) {
	s.writeByte(byte(OpCall))
	s.writeString(mangledName)
}

func (s *Stream) Return() { s.op0(OpReturn) }

func (s *Stream) FnBegin(mangledName string, paramCount int) {
	s.writeByte(byte(OpFnBegin))
	s.writeString(mangledName)
	s.writeUvarint(uint64(paramCount))
}

func (s *Stream) FnEnd() { s.op0(OpFnEnd) }

func (s *Stream) ExternDecl(mangledName string) {
	s.writeByte(byte(OpExternDecl))
	s.writeString(mangledName)
}

// Resolve back-patches every outstanding fixup against the now-bound label
// table. It is an InternalError (spec.md section 7) for a fixup's label to
// remain unbound - that indicates a code generator emitted a jump to a
// label it never bound, a program bug rather than a user error.
func (s *Stream) Resolve() error {
	for _, f := range s.fixups {
		offset, ok := s.labels[f.LabelID]
		if !ok {
			return fmt.Errorf("il: unresolved label %d referenced at offset %d", f.LabelID, f.Offset)
		}
		binary.LittleEndian.PutUint32(s.buf[f.Offset:f.Offset+4], uint32(offset))
	}
	s.fixups = nil
	return nil
}

// PendingFixups reports how many fixups remain unresolved - spec.md section
// 8 property 5 (label closure) asserts this is zero after Resolve.
func (s *Stream) PendingFixups() int { return len(s.fixups) }

// Bytes returns the length-prefixed wire form: a 4-byte little-endian
// length followed by the raw opcode stream (spec.md section 6).
func (s *Stream) Bytes() []byte {
	out := make([]byte, 4+len(s.buf))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(s.buf)))
	copy(out[4:], s.buf)
	return out
}

// Raw returns the unframed opcode bytes, primarily for tests and the
// disassembler.
func (s *Stream) Raw() []byte { return s.buf }
