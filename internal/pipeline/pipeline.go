// Package pipeline SPDX-License-Identifier: Apache-2.0
//
// Package pipeline wires the three handler registries (internal/genpass,
// internal/anpass, internal/codegen) into a fresh internal/driver.Assembly.
// It exists only to keep that dependency-injection wiring - the concrete
// "which handlers get registered" answer spec.md section 9 requires to
// live outside process-global state - in one place shared by cmd/duskc and
// internal/lspserver.
package pipeline

import (
	"duskc/internal/anpass"
	"duskc/internal/ast"
	"duskc/internal/codegen"
	"duskc/internal/driver"
	"duskc/internal/genpass"
	"duskc/internal/registry"
)

// New builds an Assembly around parser with every generator, analyser, and
// code generator handler registered.
func New(parser driver.Parser) *driver.Assembly {
	gens := registry.NewGenerators()
	ans := registry.NewAnalysers()
	cgs := registry.NewCodeGenerators()

	asm := driver.New(parser, gens, ans, cgs)
	env := asm.Env()

	genpass.Register(gens, env)
	anpass.Register(ans, env)
	codegen.Register(cgs, env)

	if missing := registry.CheckCoverage(gens, ans, cgs); len(missing) > 0 {
		panic("pipeline: incomplete handler coverage: " + joinKinds(missing))
	}

	return asm
}

func joinKinds(kinds []ast.Kind) string {
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += ", "
		}
		out += k.String()
	}
	return out
}
