// Package ast SPDX-License-Identifier: Apache-2.0
package ast

// Kind tags every concrete node variant. Dispatch tables in internal/registry
// are keyed by Kind, never by Go's own dynamic type.
type Kind int

const (
	ILLEGAL Kind = iota

	Block
	String
	Number
	Boolean
	Array
	Tuple
	Symbol
	Type
	Dec
	If
	Fn
	FnCall
	Loop
	Continue
	Break
	Struct
	Impl
	Attribute
	Affix
	UnaryExpr
	BinaryExpr
	Index
	FieldAccess
	Return
	Extern
	Use
	Namespace
)

var kindNames = [...]string{
	"ILLEGAL", "Block", "String", "Number", "Boolean", "Array", "Tuple",
	"Symbol", "Type", "Dec", "If", "Fn", "FnCall", "Loop", "Continue",
	"Break", "Struct", "Impl", "Attribute", "Affix", "UnaryExpr",
	"BinaryExpr", "Index", "FieldAccess", "Return", "Extern", "Use",
	"Namespace",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Position locates a node in its originating source file. Consulted only by
// diagnostics and by the external parser/lexer collaborators - the core
// itself never re-derives it.
type Position struct {
	Line   int
	Column int
	Offset int
}

// AffixType distinguishes the three operator-overload shapes a user can
// define via an Affix declaration.
type AffixType int

const (
	Infix AffixType = iota
	Prefix
	Suffix
)

func (t AffixType) String() string {
	switch t {
	case Infix:
		return "infix"
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	default:
		return "affix(?)"
	}
}

// Node is implemented by every AST variant. Analysers flip Emit to false to
// suppress an otherwise-dead subtree's code generation (e.g. a declaration
// folded away) without removing it from the tree.
type Node interface {
	NodeKind() Kind
	NodePos() Position
	Attributes() []*AttributeNode
	AddAttribute(*AttributeNode)
	ShouldEmit() bool
	SetEmit(bool)
}

// Base is embedded by every concrete node and implements the Node plumbing
// common to all of them. It is exported so constructors outside this package
// (the parser) can build nodes field-by-field.
type Base struct {
	Pos   Position
	Attrs []*AttributeNode
	Emit  bool
}

func NewBase(pos Position) Base {
	return Base{Pos: pos, Emit: true}
}

func (b *Base) NodePos() Position            { return b.Pos }
func (b *Base) Attributes() []*AttributeNode { return b.Attrs }
func (b *Base) AddAttribute(a *AttributeNode) {
	b.Attrs = append(b.Attrs, a)
}
func (b *Base) ShouldEmit() bool { return b.Emit }
func (b *Base) SetEmit(v bool)   { b.Emit = v }
