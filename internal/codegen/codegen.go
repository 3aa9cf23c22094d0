// Package codegen SPDX-License-Identifier: Apache-2.0
//
// Package codegen implements spec.md section 4.5's CodeGenerator handlers:
// one per ast.Kind, each appending IL opcodes for a single node once every
// semantic pass has finished with zero diagnostics. Grounded on the
// instruction-emission half of kanso's internal/ir (Builder methods) and,
// at the algorithmic level, on DuskAssembly.cpp's generate_code_node.
//
// Control-flow and purely structural kinds (Block, If, Loop, Fn, Affix,
// Impl, Struct, Extern, Namespace) are driven directly by
// internal/driver's walkCodegen instead of through this package's
// registry entries, because they need the scope stack and the IL
// stream's label/fixup machinery interleaved with their children's code
// in ways a single self-contained CodeGenFunc cannot express (an if
// needs a branch emitted between its condition and its true branch, not
// before or after both). Those kinds are still registered here with
// trivial handlers purely so registry.CheckCoverage sees every ast.Kind
// accounted for.
package codegen

import (
	"duskc/internal/ast"
	"duskc/internal/driver"
	"duskc/internal/registry"
	"duskc/internal/scope"
)

// Register installs every CodeGenerator handler.
func Register(reg *registry.CodeGenerators, env *driver.Env) {
	structural := func(ast.Node) {}

	reg.Register(ast.Block, structural)
	reg.Register(ast.If, structural)
	reg.Register(ast.Loop, structural)
	reg.Register(ast.Fn, structural)
	reg.Register(ast.Affix, structural)
	reg.Register(ast.Impl, structural)
	reg.Register(ast.Struct, structural)
	reg.Register(ast.Extern, structural)
	reg.Register(ast.Namespace, structural)
	reg.Register(ast.Use, structural)
	reg.Register(ast.Type, structural)
	reg.Register(ast.Attribute, structural)

	reg.Register(ast.String, func(n ast.Node) { env.IL.PushConstStr(n.(*ast.StringNode).Value) })
	reg.Register(ast.Number, func(n ast.Node) { emitNumber(env, n.(*ast.NumberNode)) })
	reg.Register(ast.Boolean, func(n ast.Node) { env.IL.PushConstBool(n.(*ast.BooleanNode).Value) })
	reg.Register(ast.Array, func(n ast.Node) { env.IL.NewArray(len(n.(*ast.ArrayNode).Elements)) })
	reg.Register(ast.Tuple, func(n ast.Node) { env.IL.NewArray(len(n.(*ast.TupleNode).Elements)) })
	reg.Register(ast.Symbol, func(n ast.Node) { emitSymbol(env, n.(*ast.SymbolNode)) })
	reg.Register(ast.Dec, func(n ast.Node) { emitDec(env, n.(*ast.DecNode)) })
	reg.Register(ast.FnCall, func(n ast.Node) { env.IL.Call(n.(*ast.FnCallNode).Target) })
	reg.Register(ast.Continue, func(n ast.Node) { emitJumpToLoop(env, false) })
	reg.Register(ast.Break, func(n ast.Node) { emitJumpToLoop(env, true) })
	reg.Register(ast.UnaryExpr, func(n ast.Node) { emitUnary(env, n.(*ast.UnaryExprNode)) })
	reg.Register(ast.BinaryExpr, func(n ast.Node) { emitBinary(env, n.(*ast.BinaryExprNode)) })
	reg.Register(ast.Index, func(n ast.Node) { env.IL.IndexLoad() })
	reg.Register(ast.FieldAccess, func(n ast.Node) { env.IL.FieldLoad(n.(*ast.FieldAccessNode).Offset) })
	reg.Register(ast.Return, func(n ast.Node) { env.IL.Return() })
}

func emitNumber(env *driver.Env, n *ast.NumberNode) {
	typ, _ := env.TypeOf(n)
	if typ != "" && typ[0] == 'f' {
		env.IL.PushConstF64(parseFloat(n.Raw))
		return
	}
	env.IL.PushConstI64(parseInt(n.Raw))
}

func emitSymbol(env *driver.Env, n *ast.SymbolNode) {
	sym, ok := env.Scope.Lookup(n.Name)
	if !ok {
		return // already reported by the analyser; codegen never runs when diagnostics are non-empty
	}
	if sym.Linkage == scope.LinkLocal || sym.Linkage == scope.LinkParam {
		env.IL.LoadSlot(sym.Slot)
	}
}

func emitDec(env *driver.Env, n *ast.DecNode) {
	if n.Init != nil {
		env.IL.StoreSlot(n.Slot)
	}
}

func emitJumpToLoop(env *driver.Env, exit bool) {
	f, ok := env.Scope.EnclosingLoop()
	if !ok {
		return
	}
	if exit {
		env.IL.Jump(f.LoopExit)
	} else {
		env.IL.Jump(f.LoopHead)
	}
}

func emitUnary(env *driver.Env, n *ast.UnaryExprNode) {
	switch {
	case n.Mangled:
		env.IL.Call(n.Target)
	case n.Operator == "-":
		env.IL.Neg()
	case n.Operator == "!":
		env.IL.Not()
	}
}

func emitBinary(env *driver.Env, n *ast.BinaryExprNode) {
	if n.Mangled {
		env.IL.Call(n.Target)
		return
	}
	switch n.Operator {
	case "+":
		env.IL.Add()
	case "-":
		env.IL.Sub()
	case "*":
		env.IL.Mul()
	case "/":
		env.IL.Div()
	case "%":
		env.IL.Mod()
	case "==":
		env.IL.Eq()
	case "!=":
		env.IL.NotEq()
	case "<":
		env.IL.Lt()
	case "<=":
		env.IL.LtEq()
	case ">":
		env.IL.Gt()
	case ">=":
		env.IL.GtEq()
	case "&&":
		env.IL.And()
	case "||":
		env.IL.Or()
	}
}

// parseInt/parseFloat avoid strconv for the narrow literal grammar the
// lexer guarantees (decimal digits, or 0x-prefixed hex digits for integers,
// optional leading sign); kept tiny and dependency-free since the lexer has
// already validated the text.
func parseInt(s string) int64 {
	neg := false
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	var v int64
	if i+1 < len(s) && s[i] == '0' && s[i+1] == 'x' {
		for i += 2; i < len(s); i++ {
			c := s[i]
			switch {
			case c >= '0' && c <= '9':
				v = v*16 + int64(c-'0')
			case c >= 'a' && c <= 'f':
				v = v*16 + int64(c-'a'+10)
			case c >= 'A' && c <= 'F':
				v = v*16 + int64(c-'A'+10)
			}
		}
	}
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		v = v*10 + int64(s[i]-'0')
	}
	if neg {
		v = -v
	}
	return v
}

func parseFloat(s string) float64 {
	neg := false
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	var intPart, fracPart float64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		intPart = intPart*10 + float64(s[i]-'0')
	}
	if i < len(s) && s[i] == '.' {
		i++
		scale := 0.1
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			fracPart += float64(s[i]-'0') * scale
			scale /= 10
		}
	}
	v := intPart + fracPart
	if neg {
		v = -v
	}
	return v
}
