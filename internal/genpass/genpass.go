// Package genpass SPDX-License-Identifier: Apache-2.0
//
// Package genpass implements spec.md section 4.3's SemanticGenerator
// handlers: one per ast.Kind, populating the scope stack with symbols,
// type records, and slot assignments ahead of analysis. Grounded on the
// declaration-registration half of kanso's internal/semantic (the
// FunctionRegistry/ModuleRegistry population step in context.go) and, at
// the algorithmic level, on DuskAssembly.cpp's semantic_generation_node.
package genpass

import (
	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	"duskc/internal/driver"
	"duskc/internal/registry"
	"duskc/internal/scope"
	"duskc/internal/typesys"
)

// Register installs every SemanticGenerator handler at pass 0. A single
// generation pass is enough to hoist an entire file's declarations ahead of
// that same file's analysis (runPasses always runs generation for a tree
// before analysis for that tree, within a pass); the outer multi-pass loop
// exists only so a later file's generation becomes visible to an earlier
// file's analysis on a subsequent pass (spec.md section 4.2).
func Register(reg *registry.Generators, env *driver.Env) {
	noop := func(ast.Node, int) {}

	reg.Register(ast.Block, 0, noop)
	reg.Register(ast.String, 0, noop)
	reg.Register(ast.Number, 0, noop)
	reg.Register(ast.Boolean, 0, noop)
	reg.Register(ast.Array, 0, noop)
	reg.Register(ast.Tuple, 0, noop)
	reg.Register(ast.Symbol, 0, noop)
	reg.Register(ast.Type, 0, noop)
	reg.Register(ast.Dec, 0, func(n ast.Node, _ int) { generateDec(env, n.(*ast.DecNode)) })
	reg.Register(ast.If, 0, noop)
	reg.Register(ast.Fn, 0, func(n ast.Node, _ int) { generateFn(env, n.(*ast.FnNode)) })
	reg.Register(ast.FnCall, 0, noop)
	reg.Register(ast.Loop, 0, noop)
	reg.Register(ast.Continue, 0, noop)
	reg.Register(ast.Break, 0, noop)
	reg.Register(ast.Struct, 0, func(n ast.Node, _ int) { generateStruct(env, n.(*ast.StructNode)) })
	reg.Register(ast.Impl, 0, noop)
	reg.Register(ast.Attribute, 0, noop)
	reg.Register(ast.Affix, 0, func(n ast.Node, _ int) { generateAffix(env, n.(*ast.AffixNode)) })
	reg.Register(ast.UnaryExpr, 0, noop)
	reg.Register(ast.BinaryExpr, 0, noop)
	reg.Register(ast.Index, 0, noop)
	reg.Register(ast.FieldAccess, 0, noop)
	reg.Register(ast.Return, 0, noop)
	reg.Register(ast.Extern, 0, noop)
	reg.Register(ast.Use, 0, func(n ast.Node, _ int) { generateUse(env, n.(*ast.UseNode)) })
	reg.Register(ast.Namespace, 0, noop) // the walker itself anchors the namespace frame
}

func typeNameOf(t *ast.TypeNode) string {
	if t == nil {
		return ""
	}
	if t.IsArray {
		return "[]" + typeNameOf(t.ElemType)
	}
	return t.Name
}

// sameDecl reports whether a binding already in scope came from exactly
// this node - the idempotency check every handler below needs since the
// walker may run generation on the same node across more than one pass.
func sameDecl(existing ast.Node, n ast.Node) bool { return existing == n }

func generateDec(env *driver.Env, n *ast.DecNode) {
	frame := env.Scope.Top()
	declaredType := typeNameOf(n.Declared)

	switch {
	case n.IsParam:
		if existing, ok := frame.Local(n.Name); ok {
			if !sameDecl(existing.Decl, n) {
				reportDuplicate(env, n, n.Name)
			}
			return
		}
		slot := frame.NextSlot()
		n.Slot = slot
		frame.Declare(&scope.Symbol{
			Name: n.Name, Decl: n, Type: declaredType,
			Mutable: !n.Immutable, Linkage: scope.LinkParam, Slot: slot,
		})

	case isStructFrame(frame):
		structName := frame.Owner.(*ast.StructNode).Name
		tr, ok := env.Scope.LookupType(structName)
		if !ok {
			return // the Struct generator runs before its own frame is pushed; always found
		}
		if _, exists := tr.Field(n.Name); !exists {
			tr.Fields = append(tr.Fields, scope.FieldRecord{
				Name: n.Name, Type: declaredType, Offset: len(tr.Fields),
			})
		}

	default:
		if existing, ok := frame.Local(n.Name); ok {
			if !sameDecl(existing.Decl, n) {
				reportDuplicate(env, n, n.Name)
			}
			return
		}
		slot := frame.NextSlot()
		n.Slot = slot
		typ := declaredType
		if typ == "" {
			typ = typesys.DefaultIntType
		}
		frame.Declare(&scope.Symbol{
			Name: n.Name, Decl: n, Type: typ,
			Mutable: !n.Immutable, Linkage: scope.LinkLocal, Slot: slot,
		})
	}
}

func isStructFrame(f *scope.Frame) bool {
	_, ok := f.Owner.(*ast.StructNode)
	return ok
}

func reportDuplicate(env *driver.Env, n ast.Node, name string) {
	env.Diags.Add(diagnostics.New(diagnostics.CategoryContext, diagnostics.ErrDuplicateDecl,
		env.File, "duplicate declaration of '"+name+"'", n.NodePos(), len(name)))
}

func paramTypeFingerprint(params []*ast.DecNode) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = typeNameOf(p.Declared)
	}
	return out
}

func generateFn(env *driver.Env, n *ast.FnNode) {
	frame := env.Scope.Top()
	paramTypes := paramTypeFingerprint(n.Params)

	unmangled := n.Name
	if n.TypeSelf != "" {
		unmangled = n.TypeSelf + "::" + n.Name
	}
	n.Mangled = env.MangleName(unmangled, paramTypes)

	if existing, ok := frame.Local(n.Name); ok {
		if !sameDecl(existing.Decl, n) {
			reportDuplicate(env, n, n.Name)
		}
		return
	}
	frame.Declare(&scope.Symbol{
		Name: n.Name, Decl: n, Type: typeNameOf(n.ReturnType),
		Linkage: scope.LinkGlobal, IsFunc: true, Mangled: n.Mangled, ParamTyps: paramTypes,
	})
}

func generateAffix(env *driver.Env, n *ast.AffixNode) {
	frame := env.Scope.Top()
	paramTypes := paramTypeFingerprint(n.Params)
	key := affixKey(n.AffixType, n.Operator)
	n.Mangled = env.MangleName("affix__"+key, paramTypes)

	if existing, ok := frame.Local(key); ok {
		if !sameDecl(existing.Decl, n) {
			reportDuplicate(env, n, "operator "+n.Operator)
		}
		return
	}
	frame.Declare(&scope.Symbol{
		Name: key, Decl: n, Type: typeNameOf(n.ReturnType),
		Linkage: scope.LinkGlobal, IsFunc: true, Mangled: n.Mangled, ParamTyps: paramTypes,
	})
}

// affixKey is the scope-table key an operator overload is filed under -
// distinct from any identifier a user could write, so it never collides
// with an ordinary function or variable name.
func affixKey(t ast.AffixType, operator string) string {
	return "operator:" + t.String() + ":" + operator
}

func generateStruct(env *driver.Env, n *ast.StructNode) {
	frame := env.Scope.Top()
	if existing, ok := frame.LocalType(n.Name); ok {
		if !sameDecl(existing.Decl, n) {
			reportDuplicate(env, n, n.Name)
		}
		return
	}
	frame.DeclareType(&scope.TypeRecord{Name: n.Name, Decl: n})
}

func generateUse(env *driver.Env, n *ast.UseNode) {
	ns, ok := env.Scope.FindNamespace(n.Namespace)
	if !ok {
		env.Diags.Add(diagnostics.New(diagnostics.CategoryResolution, diagnostics.ErrUndefinedNamespace,
			env.File, "namespace '"+n.Namespace+"' is not declared", n.NodePos(), len(n.Namespace)))
		return
	}
	frame := env.Scope.Top()
	for _, sym := range ns.All() {
		if _, exists := frame.Local(sym.Name); exists {
			continue // already imported on an earlier pass
		}
		imported := *sym
		frame.Declare(&imported)
	}
}
