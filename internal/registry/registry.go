// Package registry SPDX-License-Identifier: Apache-2.0
//
// Package registry implements the three parallel handler registries from
// spec.md section 4.1: SemanticGenerator, SemanticAnalyser, and
// CodeGenerator, each keyed by ast.Kind with a declared pass index.
// Grounded on the per-concern registry pattern in kanso's
// internal/semantic (FunctionRegistry, ModuleRegistry) and
// internal/types/registry.go (TypeRegistry), generalized here into
// dispatch-by-tag tables built once at driver construction time rather
// than kanso's delegate-by-name lookups - a direct analogue of the
// original C++ front end's handler-vector-per-concern design (see
// DuskAssembly.cpp), reimplemented per spec.md section 9 as compile-time
// tables rather than process-global state.
package registry

import (
	"fmt"

	"duskc/internal/ast"
)

// GenContext is the mutable state a semantic-generator handler may touch.
type GenContext interface {
	Pass() int
}

// GeneratorFunc populates scope for one node; pass is the current pass index.
type GeneratorFunc func(node ast.Node, pass int)

// AnalyserFunc validates one node; split into structural/contextual and
// type-compatibility concerns per spec.md section 4.4, but registered as a
// single entry point - the two concerns are just two calls an analyser
// implementation makes internally, matching the source's
// validate_semantics/validate_types pairing (DuskAssembly.cpp).
type AnalyserFunc func(node ast.Node, pass int)

// CodeGenFunc emits IL for one node.
type CodeGenFunc func(node ast.Node)

// Generators is the SemanticGenerator registry: exactly one handler per
// ast.Kind (spec.md section 4.1 - "Exactly one handler may be registered
// per (family, node_kind)").
type Generators struct {
	entries map[ast.Kind]genEntry
}

type genEntry struct {
	pass int
	fn   GeneratorFunc
}

func NewGenerators() *Generators {
	return &Generators{entries: make(map[ast.Kind]genEntry)}
}

// Register records fn as the generator for kind, to run at the given pass
// index. Panics on a second registration for the same kind - registration
// is a build-time fixed list, never a runtime decision.
func (g *Generators) Register(kind ast.Kind, pass int, fn GeneratorFunc) {
	if _, exists := g.entries[kind]; exists {
		panic(fmt.Sprintf("registry: duplicate SemanticGenerator for %s", kind))
	}
	g.entries[kind] = genEntry{pass: pass, fn: fn}
}

// Dispatch runs the registered generator for node's kind if one is declared
// to run at exactly this pass; ran reports whether it did. known is false if
// no handler is registered for this kind at all - the caller (driver)
// treats that as an
// InternalError (spec.md section 4.1: "a missing handler for a kind
// encountered during a walk is a program-level bug").
func (g *Generators) Dispatch(node ast.Node, pass int) (ran, known bool) {
	e, ok := g.entries[node.NodeKind()]
	if !ok {
		return false, false
	}
	ran = e.pass == pass
	if ran {
		e.fn(node, pass)
	}
	return ran, true
}

// MaxPass returns the highest pass index registered across all kinds, or -1
// if nothing is registered.
func (g *Generators) MaxPass() int {
	max := -1
	for _, e := range g.entries {
		if e.pass > max {
			max = e.pass
		}
	}
	return max
}

// Kinds returns every kind with a registered handler, for coverage checks.
func (g *Generators) Kinds() map[ast.Kind]bool {
	out := make(map[ast.Kind]bool, len(g.entries))
	for k := range g.entries {
		out[k] = true
	}
	return out
}

// Analysers is the SemanticAnalyser registry, structurally identical to
// Generators but kept as a distinct type so the driver cannot accidentally
// dispatch a generator through the analyser phase or vice versa.
type Analysers struct {
	entries map[ast.Kind]anEntry
}

type anEntry struct {
	pass int
	fn   AnalyserFunc
}

func NewAnalysers() *Analysers {
	return &Analysers{entries: make(map[ast.Kind]anEntry)}
}

func (a *Analysers) Register(kind ast.Kind, pass int, fn AnalyserFunc) {
	if _, exists := a.entries[kind]; exists {
		panic(fmt.Sprintf("registry: duplicate SemanticAnalyser for %s", kind))
	}
	a.entries[kind] = anEntry{pass: pass, fn: fn}
}

func (a *Analysers) Dispatch(node ast.Node, pass int) (ran, known bool) {
	e, ok := a.entries[node.NodeKind()]
	if !ok {
		return false, false
	}
	ran = e.pass == pass
	if ran {
		e.fn(node, pass)
	}
	return ran, true
}

func (a *Analysers) MaxPass() int {
	max := -1
	for _, e := range a.entries {
		if e.pass > max {
			max = e.pass
		}
	}
	return max
}

func (a *Analysers) Kinds() map[ast.Kind]bool {
	out := make(map[ast.Kind]bool, len(a.entries))
	for k := range a.entries {
		out[k] = true
	}
	return out
}

// CodeGenerators is the CodeGenerator registry. It has no pass concept -
// code generation runs once, after every semantic pass completes
// (spec.md section 4.2 step 5).
type CodeGenerators struct {
	entries map[ast.Kind]CodeGenFunc
}

func NewCodeGenerators() *CodeGenerators {
	return &CodeGenerators{entries: make(map[ast.Kind]CodeGenFunc)}
}

func (c *CodeGenerators) Register(kind ast.Kind, fn CodeGenFunc) {
	if _, exists := c.entries[kind]; exists {
		panic(fmt.Sprintf("registry: duplicate CodeGenerator for %s", kind))
	}
	c.entries[kind] = fn
}

func (c *CodeGenerators) Dispatch(node ast.Node) (known bool) {
	fn, ok := c.entries[node.NodeKind()]
	if !ok {
		return false
	}
	fn(node)
	return true
}

func (c *CodeGenerators) Kinds() map[ast.Kind]bool {
	out := make(map[ast.Kind]bool, len(c.entries))
	for k := range c.entries {
		out[k] = true
	}
	return out
}

// AllKinds enumerates every ast.Kind that should have a handler in all
// three registries (spec.md section 8 property 3: handler coverage).
// ILLEGAL is intentionally excluded - it is never produced by a well-formed
// parse.
func AllKinds() []ast.Kind {
	return []ast.Kind{
		ast.Block, ast.String, ast.Number, ast.Boolean, ast.Array, ast.Tuple,
		ast.Symbol, ast.Type, ast.Dec, ast.If, ast.Fn, ast.FnCall, ast.Loop,
		ast.Continue, ast.Break, ast.Struct, ast.Impl, ast.Attribute,
		ast.Affix, ast.UnaryExpr, ast.BinaryExpr, ast.Index, ast.FieldAccess,
		ast.Return, ast.Extern, ast.Use, ast.Namespace,
	}
}

// CheckCoverage returns the kinds from AllKinds missing a handler in any of
// the three registries - a non-empty result is an InternalError per
// spec.md section 4.1.
func CheckCoverage(g *Generators, a *Analysers, c *CodeGenerators) []ast.Kind {
	var missing []ast.Kind
	gk, ak, ck := g.Kinds(), a.Kinds(), c.Kinds()
	for _, k := range AllKinds() {
		if !gk[k] || !ak[k] || !ck[k] {
			missing = append(missing, k)
		}
	}
	return missing
}
