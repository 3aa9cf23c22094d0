package diagnostics

// Error codes for the Dusk compiler. Ranges mirror kanso's
// internal/errors/codes.go convention (one contiguous block per taxonomy
// category from spec.md section 7), renumbered for Dusk's own category set.
//
// E01xx: ResolutionError
// E02xx: TypeError
// E03xx: ContextError
// E04xx: ParseError / LexError (surfaced unchanged by the satellite lexer/parser)
// E09xx: InternalError
const (
	ErrUndefinedSymbol      = "E0101"
	ErrUndefinedNamespace   = "E0102"
	ErrUnresolvedAttribute  = "E0103"

	ErrTypeMismatch       = "E0201"
	ErrArityMismatch      = "E0202"
	ErrNonBooleanCond      = "E0203"
	ErrNonIterable         = "E0204"
	ErrNonIndexable        = "E0205"
	ErrNonIntegerIndex     = "E0206"
	ErrNoMatchingOperator  = "E0207"
	ErrFieldNotFound       = "E0208"
	ErrUnknownType         = "E0209"

	ErrBreakOutsideLoop    = "E0301"
	ErrContinueOutsideLoop = "E0302"
	ErrReturnOutsideFn     = "E0303"
	ErrExternHasBody       = "E0304"
	ErrDuplicateDecl       = "E0305"
	ErrAssignImmutable     = "E0306"

	ErrLex   = "E0401"
	ErrParse = "E0402"

	ErrInternalMissingHandler = "E0901"
	ErrInternalScopeImbalance = "E0902"
	ErrInternalUnresolvedLabel = "E0903"
)

// Description returns a human-readable description of a Dusk error code,
// matching the intent of kanso's GetErrorDescription.
func Description(code string) string {
	switch code {
	case ErrUndefinedSymbol:
		return "symbol is used but not declared in the current scope"
	case ErrUndefinedNamespace:
		return "namespace is used but not declared"
	case ErrUnresolvedAttribute:
		return "attribute does not match any known compiler directive"
	case ErrTypeMismatch:
		return "expression type does not conform to the expected type"
	case ErrArityMismatch:
		return "call does not supply the declared number of arguments"
	case ErrNonBooleanCond:
		return "condition does not resolve to bool"
	case ErrNonIterable:
		return "foreach loop target is not iterable"
	case ErrNonIndexable:
		return "indexed expression is not array-typed"
	case ErrNonIntegerIndex:
		return "index expression is not integer-typed"
	case ErrNoMatchingOperator:
		return "operator is not defined for these operand types"
	case ErrFieldNotFound:
		return "struct has no field with this name"
	case ErrUnknownType:
		return "type name does not resolve to a built-in or declared type"
	case ErrBreakOutsideLoop:
		return "break used outside of a loop"
	case ErrContinueOutsideLoop:
		return "continue used outside of a loop"
	case ErrReturnOutsideFn:
		return "return used outside of a function or affix body"
	case ErrExternHasBody:
		return "extern declaration has a body"
	case ErrDuplicateDecl:
		return "duplicate declaration in the same scope"
	case ErrAssignImmutable:
		return "assignment target is declared immutable"
	case ErrLex:
		return "malformed token"
	case ErrParse:
		return "structural syntax error"
	case ErrInternalMissingHandler:
		return "no handler registered for this node kind"
	case ErrInternalScopeImbalance:
		return "scope stack depth did not return to its starting value"
	case ErrInternalUnresolvedLabel:
		return "a label referenced by a fixup was never bound"
	default:
		return "unknown error code"
	}
}
