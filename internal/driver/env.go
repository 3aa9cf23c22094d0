// Package driver SPDX-License-Identifier: Apache-2.0
//
// Package driver implements the PassDriver / Assembly from spec.md section
// 4.2: it owns the scope stack, the IL emitter, and the parsed trees, and
// runs the fixed outer loop over passes described there. Grounded on the
// orchestration shown in kanso's cmd/kanso-cli/main.go (parse -> analyze ->
// collect errors -> conditional codegen) and, at the algorithmic level, on
// DuskAssembly.cpp's compile_write_binary / semantic_generation_node /
// semantic_analyse_node / generate_code_node (original_source/bootstrap) -
// reimplemented as an explicit dependency-injected table per spec.md
// section 9 instead of process-global handler vectors, and with exactly
// one enter/leave pair per Loop (the source's double leave() in
// semantic_generation_node is a bug spec.md explicitly calls out not to
// replicate).
package driver

import (
	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	"duskc/internal/il"
	"duskc/internal/mangle"
	"duskc/internal/scope"
)

// Env is the mutable state every registered handler closure captures: the
// scope stack, the IL emitter, and the diagnostic sink, plus bookkeeping
// for which file and pass are currently being walked. Handlers never
// receive ownership of it - it is borrowed for the duration of one
// Dispatch call (spec.md section 5's borrowing rule).
//
// Types holds the resolved type string for every expression node the
// analysers have settled - a side table rather than a field on every node
// variant, since only a handful of node kinds (Dec, FnCall, UnaryExpr,
// BinaryExpr) have a natural place to store one themselves.
type Env struct {
	Scope *scope.Context
	IL    *il.Stream
	Diags *diagnostics.Sink
	Types map[ast.Node]string

	File string
	Pass int
}

// NewEnv wires a fresh Env around the given scope/IL/sink triple.
func NewEnv(sc *scope.Context, ilStream *il.Stream, sink *diagnostics.Sink) *Env {
	return &Env{Scope: sc, IL: ilStream, Diags: sink, Types: make(map[ast.Node]string)}
}

// SetType records node's resolved type.
func (e *Env) SetType(node ast.Node, typ string) { e.Types[node] = typ }

// TypeOf returns node's resolved type, if an analyser has already settled it.
func (e *Env) TypeOf(node ast.Node) (string, bool) {
	t, ok := e.Types[node]
	return t, ok
}

// MangleName resolves the mangled symbol for a function/affix declared at
// the current scope position with the given unmangled name and ordered
// parameter type fingerprints (spec.md's "mangled name" glossary entry).
func (e *Env) MangleName(unmangledName string, paramTypes []string) string {
	return mangle.Name(e.Scope.ScopeChain(), unmangledName, paramTypes)
}
