// Package typesys SPDX-License-Identifier: Apache-2.0
//
// Package typesys catalogues Dusk's built-in primitive types and the
// nominal-with-widening conformance rule spec.md section 4.4 calls for.
// Grounded on kanso's internal/types/builtins.go and
// internal/builtins/types.go (a flat builtin-name set plus IsIntegerType),
// extended with the widening table spec.md section 4.4 requires and which
// the teacher's contract-language domain never needed.
package typesys

// Kind distinguishes the primitive categories participating in widening.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

// Primitive describes one built-in type.
type Primitive struct {
	Name     string
	Kind     Kind
	Bits     int
	IsSigned bool
}

var builtinOrder = []Primitive{
	{"i8", KindInt, 8, true},
	{"i16", KindInt, 16, true},
	{"i32", KindInt, 32, true},
	{"i64", KindInt, 64, true},
	{"u8", KindInt, 8, false},
	{"u16", KindInt, 16, false},
	{"u32", KindInt, 32, false},
	{"u64", KindInt, 64, false},
	{"f32", KindFloat, 32, false},
	{"f64", KindFloat, 64, false},
	{"bool", KindBool, 1, false},
	{"string", KindString, 0, false},
}

var builtins = func() map[string]Primitive {
	m := make(map[string]Primitive, len(builtinOrder))
	for _, p := range builtinOrder {
		m[p.Name] = p
	}
	return m
}()

// Lookup returns the Primitive for name, if it is a built-in.
func Lookup(name string) (Primitive, bool) {
	p, ok := builtins[name]
	return p, ok
}

// IsBuiltin reports whether name is a built-in primitive type name.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// IsInteger reports whether name is one of the built-in integer types.
func IsInteger(name string) bool {
	p, ok := builtins[name]
	return ok && p.Kind == KindInt
}

// IsFloat reports whether name is one of the built-in float types.
func IsFloat(name string) bool {
	p, ok := builtins[name]
	return ok && p.Kind == KindFloat
}

// DefaultIntType is the type assigned to an integer literal with no
// explicit suffix.
const DefaultIntType = "i64"

// DefaultFloatType is the type assigned to a float literal with no explicit
// suffix.
const DefaultFloatType = "f64"

// Conforms reports whether a value of type `from` can be used where `to` is
// expected: identity, or one of the built-in primitive widenings spec.md
// section 4.4 enumerates (integer-to-wider-integer of the same signedness,
// integer-to-float). Arrays and structs are covariant only in identity and
// are compared by the caller before ever reaching Conforms.
func Conforms(from, to string) bool {
	if from == to {
		return true
	}
	fp, fok := builtins[from]
	tp, tok := builtins[to]
	if !fok || !tok {
		return false
	}
	switch {
	case fp.Kind == KindInt && tp.Kind == KindInt:
		return fp.IsSigned == tp.IsSigned && fp.Bits <= tp.Bits
	case fp.Kind == KindInt && tp.Kind == KindFloat:
		return true
	default:
		return false
	}
}

// Widen returns the wider of two conforming numeric types, used when
// inferring the result type of a binary arithmetic expression. Returns ""
// if neither conforms to the other.
func Widen(a, b string) string {
	if a == b {
		return a
	}
	if Conforms(a, b) {
		return b
	}
	if Conforms(b, a) {
		return a
	}
	return ""
}
