// Package anpass SPDX-License-Identifier: Apache-2.0
//
// Package anpass implements spec.md section 4.4's SemanticAnalyser
// handlers: validate_semantics (context legality - break outside a loop,
// return outside a function, assignment to an immutable binding; duplicate
// struct fields are not reported) and validate_types (nominal
// conformance with widening) for every ast.Kind, registered as a single
// entry point per kind matching DuskAssembly.cpp's
// validate_semantics/validate_types pairing. Grounded on kanso's
// internal/semantic type-checking passes and internal/types/registry.go.
package anpass

import (
	"strings"

	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	"duskc/internal/driver"
	"duskc/internal/registry"
	"duskc/internal/typesys"
)

// lastPass is the pass index every analyser runs at. Generation is
// complete for every file by the start of this pass (spec.md section 4.2):
// every generator runs at pass 0, and runPasses finishes pass 0 for every
// tree before pass 1 begins for any tree.
const lastPass = 1

// Register installs every SemanticAnalyser handler at lastPass.
func Register(reg *registry.Analysers, env *driver.Env) {
	reg.Register(ast.Block, lastPass, func(ast.Node, int) {})
	reg.Register(ast.String, lastPass, func(n ast.Node, _ int) { env.SetType(n, "string") })
	reg.Register(ast.Number, lastPass, func(n ast.Node, _ int) { analyseNumber(env, n.(*ast.NumberNode)) })
	reg.Register(ast.Boolean, lastPass, func(n ast.Node, _ int) { env.SetType(n, "bool") })
	reg.Register(ast.Array, lastPass, func(n ast.Node, _ int) { analyseArray(env, n.(*ast.ArrayNode)) })
	reg.Register(ast.Tuple, lastPass, func(n ast.Node, _ int) { env.SetType(n, "tuple") })
	reg.Register(ast.Symbol, lastPass, func(n ast.Node, _ int) { analyseSymbol(env, n.(*ast.SymbolNode)) })
	reg.Register(ast.Type, lastPass, func(ast.Node, int) {})
	reg.Register(ast.Dec, lastPass, func(n ast.Node, _ int) { analyseDec(env, n.(*ast.DecNode)) })
	reg.Register(ast.If, lastPass, func(n ast.Node, _ int) { analyseIf(env, n.(*ast.IfNode)) })
	reg.Register(ast.Fn, lastPass, func(n ast.Node, _ int) { analyseFn(env, n.(*ast.FnNode)) })
	reg.Register(ast.FnCall, lastPass, func(n ast.Node, _ int) { analyseFnCall(env, n.(*ast.FnCallNode)) })
	reg.Register(ast.Loop, lastPass, func(n ast.Node, _ int) { analyseLoop(env, n.(*ast.LoopNode)) })
	reg.Register(ast.Continue, lastPass, func(n ast.Node, _ int) { analyseContinue(env, n) })
	reg.Register(ast.Break, lastPass, func(n ast.Node, _ int) { analyseBreak(env, n) })
	reg.Register(ast.Struct, lastPass, func(ast.Node, int) {})
	reg.Register(ast.Impl, lastPass, func(ast.Node, int) {})
	reg.Register(ast.Attribute, lastPass, func(n ast.Node, _ int) { analyseAttribute(env, n.(*ast.AttributeNode)) })
	reg.Register(ast.Affix, lastPass, func(n ast.Node, _ int) { analyseAffix(env, n.(*ast.AffixNode)) })
	reg.Register(ast.UnaryExpr, lastPass, func(n ast.Node, _ int) { analyseUnary(env, n.(*ast.UnaryExprNode)) })
	reg.Register(ast.BinaryExpr, lastPass, func(n ast.Node, _ int) { analyseBinary(env, n.(*ast.BinaryExprNode)) })
	reg.Register(ast.Index, lastPass, func(n ast.Node, _ int) { analyseIndex(env, n.(*ast.IndexNode)) })
	reg.Register(ast.FieldAccess, lastPass, func(n ast.Node, _ int) { analyseFieldAccess(env, n.(*ast.FieldAccessNode)) })
	reg.Register(ast.Return, lastPass, func(n ast.Node, _ int) { analyseReturn(env, n.(*ast.ReturnNode)) })
	reg.Register(ast.Extern, lastPass, func(n ast.Node, _ int) { analyseExtern(env, n.(*ast.ExternNode)) })
	reg.Register(ast.Use, lastPass, func(ast.Node, int) {})
	reg.Register(ast.Namespace, lastPass, func(ast.Node, int) {})
}

func errAt(env *driver.Env, cat diagnostics.Category, code, msg string, n ast.Node) {
	env.Diags.Add(diagnostics.New(cat, code, env.File, msg, n.NodePos(), 1))
}

func analyseNumber(env *driver.Env, n *ast.NumberNode) {
	bits := n.Bits
	if bits == 0 {
		if n.IsFloat {
			bits = 64
		} else {
			bits = 64
		}
	}
	var typ string
	switch {
	case n.IsFloat:
		typ = "f" + itoa(bits)
	case n.IsSigned:
		typ = "i" + itoa(bits)
	default:
		typ = "u" + itoa(bits)
	}
	if !typesys.IsBuiltin(typ) {
		typ = typesys.DefaultIntType
	}
	env.SetType(n, typ)
}

func itoa(n int) string {
	// small, fixed alphabet of widths - avoids pulling in strconv for a
	// four-way switch.
	switch n {
	case 8:
		return "8"
	case 16:
		return "16"
	case 32:
		return "32"
	default:
		return "64"
	}
}

func analyseArray(env *driver.Env, n *ast.ArrayNode) {
	if len(n.Elements) == 0 {
		if n.ElementType != nil {
			env.SetType(n, "[]"+n.ElementType.Name)
		} else {
			env.SetType(n, "[]"+typesys.DefaultIntType)
		}
		return
	}
	elemType, _ := env.TypeOf(n.Elements[0])
	for _, el := range n.Elements[1:] {
		t, _ := env.TypeOf(el)
		if w := typesys.Widen(elemType, t); w != "" {
			elemType = w
			continue
		}
		errAt(env, diagnostics.CategoryType, diagnostics.ErrTypeMismatch,
			"array elements do not share a common type", el)
	}
	n.ElementType = &ast.TypeNode{Name: elemType}
	env.SetType(n, "[]"+elemType)
}

func analyseSymbol(env *driver.Env, n *ast.SymbolNode) {
	sym, ok := env.Scope.Lookup(n.Name)
	if !ok {
		errAt(env, diagnostics.CategoryResolution, diagnostics.ErrUndefinedSymbol,
			"'"+n.Name+"' is not declared in this scope", n)
		return
	}
	env.SetType(n, sym.Type)
}

func analyseDec(env *driver.Env, n *ast.DecNode) {
	declared := ""
	if n.Declared != nil {
		declared = typeNameOfDec(n.Declared)
		if !typesys.IsBuiltin(declared) {
			if _, ok := env.Scope.LookupType(declared); !ok {
				errAt(env, diagnostics.CategoryType, diagnostics.ErrUnknownType,
					"'"+declared+"' does not name a known type", n)
			}
		}
	}

	var resolved string
	if n.Init != nil {
		initType, _ := env.TypeOf(n.Init)
		if declared != "" {
			if initType != declared && !typesys.Conforms(initType, declared) {
				errAt(env, diagnostics.CategoryType, diagnostics.ErrTypeMismatch,
					"initializer type '"+initType+"' does not conform to declared type '"+declared+"'", n.Init)
			}
			resolved = declared
		} else {
			resolved = initType
		}
	} else if declared != "" {
		resolved = declared
	} else {
		resolved = typesys.DefaultIntType
	}
	n.ResolvedTyp = resolved

	if sym, ok := env.Scope.Top().Local(n.Name); ok && sym.Decl == ast.Node(n) {
		sym.Type = resolved
	}
}

func typeNameOfDec(t *ast.TypeNode) string {
	if t.IsArray {
		return "[]" + typeNameOfDec(t.ElemType)
	}
	return t.Name
}

func analyseIf(env *driver.Env, n *ast.IfNode) {
	condType, _ := env.TypeOf(n.Cond)
	if condType != "bool" {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrNonBooleanCond,
			"if condition must be bool, found '"+condType+"'", n.Cond)
	}
}

func analyseFn(env *driver.Env, n *ast.FnNode) {
	for _, p := range n.Params {
		if p.Declared == nil {
			continue
		}
		t := typeNameOfDec(p.Declared)
		if !typesys.IsBuiltin(t) {
			if _, ok := env.Scope.LookupType(t); !ok {
				errAt(env, diagnostics.CategoryType, diagnostics.ErrUnknownType,
					"parameter type '"+t+"' does not name a known type", p)
			}
		}
	}
}

func analyseFnCall(env *driver.Env, n *ast.FnCallNode) {
	sym, ok := env.Scope.Lookup(n.Callee)
	if !ok || !sym.IsFunc {
		errAt(env, diagnostics.CategoryResolution, diagnostics.ErrUndefinedSymbol,
			"'"+n.Callee+"' does not name a callable function", n)
		return
	}
	if len(n.Args) != len(sym.ParamTyps) {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrArityMismatch,
			"call to '"+n.Callee+"' supplies the wrong number of arguments", n)
	} else {
		for i, arg := range n.Args {
			argType, _ := env.TypeOf(arg)
			want := sym.ParamTyps[i]
			if argType != want && !typesys.Conforms(argType, want) {
				errAt(env, diagnostics.CategoryType, diagnostics.ErrTypeMismatch,
					"argument "+itoaN(i+1)+" to '"+n.Callee+"' has type '"+argType+"', expected '"+want+"'", arg)
			}
		}
	}
	n.Mangled = true
	n.Target = sym.Mangled
	env.SetType(n, sym.Type)
}

func itoaN(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func analyseLoop(env *driver.Env, n *ast.LoopNode) {
	if !n.IsForeach {
		return
	}
	exprType, _ := env.TypeOf(n.Expr)
	if !strings.HasPrefix(exprType, "[]") {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrNonIterable,
			"loop target of type '"+exprType+"' is not iterable", n.Expr)
	}
}

func analyseContinue(env *driver.Env, n ast.Node) {
	if _, ok := env.Scope.EnclosingLoop(); !ok {
		errAt(env, diagnostics.CategoryContext, diagnostics.ErrContinueOutsideLoop,
			"continue used outside of a loop", n)
	}
}

func analyseBreak(env *driver.Env, n ast.Node) {
	if _, ok := env.Scope.EnclosingLoop(); !ok {
		errAt(env, diagnostics.CategoryContext, diagnostics.ErrBreakOutsideLoop,
			"break used outside of a loop", n)
	}
}

// knownAttributes is the fixed set of compiler directives an #[attr(...)]
// may name. Dusk has no plugin mechanism for new ones.
var knownAttributes = map[string]bool{
	"inline":     true,
	"deprecated": true,
	"extern":     true,
}

func analyseAttribute(env *driver.Env, n *ast.AttributeNode) {
	if !knownAttributes[n.Name] {
		errAt(env, diagnostics.CategoryResolution, diagnostics.ErrUnresolvedAttribute,
			"'"+n.Name+"' does not match any known compiler directive", n)
	}
}

func analyseAffix(env *driver.Env, n *ast.AffixNode) {
	for _, p := range n.Params {
		if p.Declared == nil {
			continue
		}
		t := typeNameOfDec(p.Declared)
		if !typesys.IsBuiltin(t) {
			if _, ok := env.Scope.LookupType(t); !ok {
				errAt(env, diagnostics.CategoryType, diagnostics.ErrUnknownType,
					"parameter type '"+t+"' does not name a known type", p)
			}
		}
	}
}

func analyseUnary(env *driver.Env, n *ast.UnaryExprNode) {
	operandType, _ := env.TypeOf(n.Operand)
	switch {
	case n.Operator == "!" && operandType == "bool":
		env.SetType(n, "bool")
	case n.Operator == "-" && (typesys.IsInteger(operandType) || typesys.IsFloat(operandType)):
		env.SetType(n, operandType)
	default:
		if sym, ok := env.Scope.Lookup("operator:prefix:" + n.Operator); ok && len(sym.ParamTyps) == 1 &&
			(sym.ParamTyps[0] == operandType || typesys.Conforms(operandType, sym.ParamTyps[0])) {
			n.Mangled = true
			n.Target = sym.Mangled
			env.SetType(n, sym.Type)
			return
		}
		errAt(env, diagnostics.CategoryType, diagnostics.ErrNoMatchingOperator,
			"operator '"+n.Operator+"' is not defined for '"+operandType+"'", n)
	}
}

func analyseBinary(env *driver.Env, n *ast.BinaryExprNode) {
	if n.Operator == "=" {
		analyseAssign(env, n)
		return
	}

	lt, _ := env.TypeOf(n.Lhs)
	rt, _ := env.TypeOf(n.Rhs)

	switch n.Operator {
	case "==", "!=", "<", "<=", ">", ">=":
		if lt != rt && typesys.Widen(lt, rt) == "" {
			errAt(env, diagnostics.CategoryType, diagnostics.ErrTypeMismatch,
				"cannot compare '"+lt+"' and '"+rt+"'", n)
		}
		env.SetType(n, "bool")
		return
	case "&&", "||":
		if lt != "bool" || rt != "bool" {
			errAt(env, diagnostics.CategoryType, diagnostics.ErrTypeMismatch,
				"operands of '"+n.Operator+"' must be bool", n)
		}
		env.SetType(n, "bool")
		return
	case "+", "-", "*", "/", "%":
		if w := typesys.Widen(lt, rt); w != "" {
			env.SetType(n, w)
			return
		}
	}

	if sym, ok := env.Scope.Lookup("operator:infix:" + n.Operator); ok && len(sym.ParamTyps) == 2 &&
		(sym.ParamTyps[0] == lt || typesys.Conforms(lt, sym.ParamTyps[0])) &&
		(sym.ParamTyps[1] == rt || typesys.Conforms(rt, sym.ParamTyps[1])) {
		n.Mangled = true
		n.Target = sym.Mangled
		env.SetType(n, sym.Type)
		return
	}

	errAt(env, diagnostics.CategoryType, diagnostics.ErrNoMatchingOperator,
		"operator '"+n.Operator+"' is not defined for '"+lt+"' and '"+rt+"'", n)
}

// analyseAssign validates `target = value` - not its own ast.Kind (see
// driver.emitAssign) but a BinaryExpr with operator "=".
func analyseAssign(env *driver.Env, n *ast.BinaryExprNode) {
	targetType, _ := env.TypeOf(n.Lhs)
	valueType, _ := env.TypeOf(n.Rhs)

	switch t := n.Lhs.(type) {
	case *ast.SymbolNode:
		sym, ok := env.Scope.Lookup(t.Name)
		if ok && !sym.Mutable {
			errAt(env, diagnostics.CategoryContext, diagnostics.ErrAssignImmutable,
				"'"+t.Name+"' is declared immutable", n)
		}
	case *ast.IndexNode, *ast.FieldAccessNode:
		// arrays and struct fields carry no separate mutability flag in
		// this language - only a `let` binding's own immutability gates
		// assignment.
	default:
		errAt(env, diagnostics.CategoryContext, diagnostics.ErrAssignImmutable,
			"left-hand side of '=' is not assignable", n)
	}

	if targetType != "" && valueType != targetType && !typesys.Conforms(valueType, targetType) {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrTypeMismatch,
			"cannot assign '"+valueType+"' to '"+targetType+"'", n.Rhs)
	}
	env.SetType(n, targetType)
}

func analyseIndex(env *driver.Env, n *ast.IndexNode) {
	arrType, _ := env.TypeOf(n.Array)
	if !strings.HasPrefix(arrType, "[]") {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrNonIndexable,
			"expression of type '"+arrType+"' cannot be indexed", n.Array)
		env.SetType(n, typesys.DefaultIntType)
		return
	}
	idxType, _ := env.TypeOf(n.Idx)
	if !typesys.IsInteger(idxType) {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrNonIntegerIndex,
			"index expression of type '"+idxType+"' is not an integer", n.Idx)
	}
	env.SetType(n, strings.TrimPrefix(arrType, "[]"))
}

func analyseFieldAccess(env *driver.Env, n *ast.FieldAccessNode) {
	targetType, _ := env.TypeOf(n.Target)
	tr, ok := env.Scope.LookupType(targetType)
	if !ok {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrUnknownType,
			"'"+targetType+"' does not name a struct type", n.Target)
		return
	}
	field, ok := tr.Field(n.Name)
	if !ok {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrFieldNotFound,
			"'"+targetType+"' has no field named '"+n.Name+"'", n)
		return
	}
	n.Offset = field.Offset
	env.SetType(n, field.Type)
}

func analyseReturn(env *driver.Env, n *ast.ReturnNode) {
	fnOwner, ok := env.Scope.EnclosingFn()
	if !ok {
		errAt(env, diagnostics.CategoryContext, diagnostics.ErrReturnOutsideFn,
			"return used outside of a function or affix body", n)
		return
	}
	var declaredReturn *ast.TypeNode
	switch f := fnOwner.(type) {
	case *ast.FnNode:
		declaredReturn = f.ReturnType
	case *ast.AffixNode:
		declaredReturn = f.ReturnType
	}
	if declaredReturn == nil {
		return
	}
	want := typeNameOfDec(declaredReturn)
	if n.Expr == nil {
		return
	}
	got, _ := env.TypeOf(n.Expr)
	if got != want && !typesys.Conforms(got, want) {
		errAt(env, diagnostics.CategoryType, diagnostics.ErrTypeMismatch,
			"return type '"+got+"' does not conform to declared return type '"+want+"'", n.Expr)
	}
}

func analyseExtern(env *driver.Env, n *ast.ExternNode) {
	for _, d := range n.Decls {
		if d.Body != nil {
			errAt(env, diagnostics.CategoryContext, diagnostics.ErrExternHasBody,
				"extern declaration '"+d.Name+"' must not have a body", d)
		}
	}
}
