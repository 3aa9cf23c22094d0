package ast

// BlockNode is an ordered sequence of statements sharing their enclosing
// scope - it introduces no frame of its own (spec 4.2's bracketing table).
type BlockNode struct {
	Base
	Statements []Node
}

func (*BlockNode) NodeKind() Kind { return Block }

// StringNode is a string literal.
type StringNode struct {
	Base
	Value string
}

func (*StringNode) NodeKind() Kind { return String }

// NumberNode is a numeric literal. IsFloat/IsSigned/Bits encode the literal's
// suffix (e.g. 42u8, 3.0f64); Bits defaults to the platform int width (64)
// when no suffix is present.
type NumberNode struct {
	Base
	Raw      string
	IsFloat  bool
	IsSigned bool
	Bits     int
}

func (*NumberNode) NodeKind() Kind { return Number }

// BooleanNode is a true/false literal.
type BooleanNode struct {
	Base
	Value bool
}

func (*BooleanNode) NodeKind() Kind { return Boolean }

// ArrayNode is an array literal. ElementType is nil until a semantic
// analyser fills it in from the element expressions (or, for an empty
// array, from the contextual Dec type).
type ArrayNode struct {
	Base
	Elements    []Node
	ElementType *TypeNode
}

func (*ArrayNode) NodeKind() Kind { return Array }

// TupleNode is a parenthesized comma-separated expression list treated as a
// single value - not part of the original front end's AST, but a
// grammar-driven extension added by SPEC_FULL section 3 (spec.md excludes it
// by silence, not by an explicit Non-goal).
type TupleNode struct {
	Base
	Elements []Node
}

func (*TupleNode) NodeKind() Kind { return Tuple }

// SymbolNode is a bare identifier reference, resolved against the scope
// chain by the Symbol analyser.
type SymbolNode struct {
	Base
	Name string
}

func (*SymbolNode) NodeKind() Kind { return Symbol }

// TypeNode names a type, optionally an array-of type.
type TypeNode struct {
	Base
	Name      string
	IsArray   bool
	ElemType  *TypeNode
}

func (*TypeNode) NodeKind() Kind { return Type }

// DecNode declares a binding: `let name[: Type] [= init];` or a function
// parameter. Slot, assigned by the generator, is the stable index the
// emitter uses for load/store.
type DecNode struct {
	Base
	Name        string
	Declared    *TypeNode
	Init        Node
	Immutable   bool
	ResolvedTyp string
	Slot        int
	// IsParam is set by the parser when this Dec came from a function or
	// affix parameter list rather than a `let` statement or struct field -
	// generation needs it to choose Linkage without guessing from context.
	IsParam bool
}

func (*DecNode) NodeKind() Kind { return Dec }

// IfNode is a conditional with an optional else branch.
type IfNode struct {
	Base
	Cond       Node
	TrueBlock  *BlockNode
	FalseBlock *BlockNode
}

func (*IfNode) NodeKind() Kind { return If }

// FnNode is a function or method declaration. TypeSelf is non-empty for a
// method bound via an Impl block.
type FnNode struct {
	Base
	Name        string
	Mangled     string
	TypeSelf    string
	Params      []*DecNode
	ReturnType  *TypeNode
	Body        *BlockNode
}

func (*FnNode) NodeKind() Kind { return Fn }

// FnCallNode is a call expression. Mangled flips true once the analyser has
// resolved Callee to a concrete mangled symbol.
type FnCallNode struct {
	Base
	Callee  string
	Args    []Node
	Mangled bool
	Target  string
}

func (*FnCallNode) NodeKind() Kind { return FnCall }

// LoopNode is the sole looping construct. A plain `loop { ... }` has neither
// Name nor Expr; `loop x in expr { ... }` is a foreach loop.
type LoopNode struct {
	Base
	Body      *BlockNode
	Name      string
	Expr      Node
	IsForeach bool
}

func (*LoopNode) NodeKind() Kind { return Loop }

// ContinueNode and BreakNode carry no payload.
type ContinueNode struct{ Base }

func (*ContinueNode) NodeKind() Kind { return Continue }

type BreakNode struct{ Base }

func (*BreakNode) NodeKind() Kind { return Break }

// StructNode declares a struct type; Members holds StructFieldDec children
// wrapped in a Block for uniform walking.
type StructNode struct {
	Base
	Name    string
	Members *BlockNode
}

func (*StructNode) NodeKind() Kind { return Struct }

// StructFieldDec is a single `name: Type` member inside a Struct's member
// block. It is not one of spec.md's named variants; it reuses DecNode's
// shape (name + declared type, no initialiser) since a struct field is
// structurally a restricted Dec.
type StructFieldDec = DecNode

// ImplNode binds a block of Fn/Affix declarations as methods of Target.
type ImplNode struct {
	Base
	Target  string
	Members *BlockNode
}

func (*ImplNode) NodeKind() Kind { return Impl }

// AttributeNode is `#[name(args...)]`, attached to the node it precedes at
// parse time.
type AttributeNode struct {
	Base
	Name string
	Args []Node
}

func (*AttributeNode) NodeKind() Kind { return Attribute }

// AffixNode declares a user operator overload.
type AffixNode struct {
	Base
	Name       string
	Mangled    string
	Params     []*DecNode
	ReturnType *TypeNode
	Body       *BlockNode
	AffixType  AffixType
	Operator   string
}

func (*AffixNode) NodeKind() Kind { return Affix }

// UnaryExprNode applies a prefix operator to a single operand.
type UnaryExprNode struct {
	Base
	Operator string
	Operand  Node
	Mangled  bool
	Target   string
}

func (*UnaryExprNode) NodeKind() Kind { return UnaryExpr }

// BinaryExprNode applies an infix operator to two operands. Mangled flips
// true once the analyser rewrites an unresolved primitive operator into a
// call to a matching Affix declaration.
type BinaryExprNode struct {
	Base
	Operator string
	Lhs      Node
	Rhs      Node
	Mangled  bool
	Target   string
}

func (*BinaryExprNode) NodeKind() Kind { return BinaryExpr }

// IndexNode is `array[index]`.
type IndexNode struct {
	Base
	Array Node
	Idx   Node
}

func (*IndexNode) NodeKind() Kind { return Index }

// FieldAccessNode is `expr.name` on a struct-typed expression - supplemented
// per SPEC_FULL 3.
type FieldAccessNode struct {
	Base
	Target Node
	Name   string
	Offset int
}

func (*FieldAccessNode) NodeKind() Kind { return FieldAccess }

// ReturnNode optionally carries a value expression.
type ReturnNode struct {
	Base
	Expr Node
}

func (*ReturnNode) NodeKind() Kind { return Return }

// ExternNode declares a list of externally linked function signatures
// (bodies must be absent - enforced by the Extern analyser).
type ExternNode struct {
	Base
	Decls []*FnNode
}

func (*ExternNode) NodeKind() Kind { return Extern }

// UseNode imports bindings from a previously declared Namespace.
type UseNode struct {
	Base
	Namespace string
}

func (*UseNode) NodeKind() Kind { return Use }

// NamespaceNode establishes a named scope frame anchored at the root.
type NamespaceNode struct {
	Base
	Name  string
	Block *BlockNode
}

func (*NamespaceNode) NodeKind() Kind { return Namespace }
