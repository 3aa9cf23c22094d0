package driver

import (
	"fmt"

	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	"duskc/internal/il"
	"duskc/internal/registry"
	"duskc/internal/scope"
)

// Parser is the external collaborator contract from spec.md section 2:
// "the parser hands the core a tree of typed AST nodes with source
// positions." Assembly never reads a file itself - ParseFile does, and
// returns per-file parse/lex diagnostics that gate the file's entry into
// the semantic pipeline (spec.md section 7).
type Parser interface {
	ParseFile(path string) (*ast.Tree, []diagnostics.Record, error)
}

// Sink is the external collaborator that receives the finished IL artifact
// (spec.md section 2, contract (c): "the file sink accepts an opaque byte
// buffer").
type Sink interface {
	Write(bytes []byte) error
}

// Assembly is the driver aggregate from spec.md section 3: the set of
// parsed ASTs, the scope stack, and the IL stream, plus the three handler
// registries wired in at construction time (spec.md section 9: "explicit
// dependency-injected tables constructed by the driver; no mutable
// globals").
type Assembly struct {
	parser Parser

	generators *registry.Generators
	analysers  *registry.Analysers
	codegens   *registry.CodeGenerators

	queued []string
	trees  []*ast.Tree

	scope *scope.Context
	il    *il.Stream
	env   *Env
	diags diagnostics.Sink
}

// New constructs an Assembly around the given Parser and the three
// registries a caller has already populated (see internal/genpass,
// internal/anpass, internal/codegen for the reference registrations).
func New(p Parser, gens *registry.Generators, ans *registry.Analysers, cgs *registry.CodeGenerators) *Assembly {
	a := &Assembly{
		parser:     p,
		generators: gens,
		analysers:  ans,
		codegens:   cgs,
		scope:      scope.New(),
		il:         il.New(),
	}
	a.env = NewEnv(a.scope, a.il, &a.diags)
	return a
}

// QueueFile records a source path for later parsing (spec.md section 4.2).
func (a *Assembly) QueueFile(path string) {
	a.queued = append(a.queued, path)
}

// Diagnostics returns every Record accumulated so far - populated only
// after CompileWrite has run (or failed).
func (a *Assembly) Diagnostics() []diagnostics.Record {
	return a.diags.Records()
}

// Env exposes the shared handler state so a caller can register generator,
// analyser, and code generator handlers (internal/genpass, internal/anpass,
// internal/codegen) that close over the same Env this Assembly will walk
// with.
func (a *Assembly) Env() *Env {
	return a.env
}

// CompileWrite parses every queued file, runs the pipeline, and hands the
// finished IL buffer to sink (spec.md section 4.2's compile_write). It
// returns an error only for a genuinely unrecoverable condition (I/O
// failure reading a queued file, or an InternalError); ordinary semantic
// failures are reported through Diagnostics and a nil error with the
// pipeline simply skipping code generation (spec.md section 7).
func (a *Assembly) CompileWrite(sink Sink) error {
	a.scope.Enter(nil, "root")
	defer a.scope.Leave()

	if err := a.parseAll(); err != nil {
		return err
	}

	// A file with parse errors never enters the semantic pipeline at all
	// (spec.md section 7): parseAll already excluded its tree from a.trees,
	// so any file that did parse still runs generation/analysis below and
	// contributes its own diagnostics to the same run.
	if len(a.trees) == 0 {
		return nil
	}

	if err := a.runPasses(); err != nil {
		return err
	}

	if !a.diags.Empty() {
		return nil
	}

	if err := a.runCodegen(); err != nil {
		return err
	}

	if err := a.il.Resolve(); err != nil {
		return fmt.Errorf("internal error: %w", err)
	}
	if a.il.PendingFixups() != 0 {
		return fmt.Errorf("internal error: %d fixups left unresolved", a.il.PendingFixups())
	}

	return sink.Write(a.il.Bytes())
}

func (a *Assembly) parseAll() error {
	for _, path := range a.queued {
		tree, errs, err := a.parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if len(errs) > 0 {
			for _, e := range errs {
				a.diags.Add(e)
			}
			continue
		}
		a.trees = append(a.trees, tree)
	}
	return nil
}

// runPasses is spec.md section 4.2 steps 2-4: N is derived from the highest
// pass index registered across the generator and analyser registries (the
// spec's resolution of the source's hard-coded-10-vs-derived
// inconsistency, see DESIGN.md), the root scope pushed by CompileWrite
// stays in place across every pass and code generation, and for each pass
// every tree runs semantic generation fully before semantic analysis begins
// for that same tree.
func (a *Assembly) runPasses() error {
	n := a.generators.MaxPass()
	if a.analysers.MaxPass() > n {
		n = a.analysers.MaxPass()
	}
	n++ // MaxPass is the highest index; N is a count.
	if n < 1 {
		n = 1
	}

	for pass := 0; pass < n; pass++ {
		a.env.Pass = pass
		for _, tree := range a.trees {
			a.env.File = tree.Path
			if err := a.walkGenerate(tree.Root, pass); err != nil {
				return err
			}
			if err := a.walkAnalyse(tree.Root, pass); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Assembly) runCodegen() error {
	for _, tree := range a.trees {
		a.env.File = tree.Path
		if err := a.walkCodegen(tree.Root); err != nil {
			return err
		}
	}
	return nil
}

// missingHandler reports an InternalError per spec.md section 4.1: a node
// kind encountered during a walk with no registered handler in the given
// family is a program bug, not a user diagnostic.
func missingHandler(family string, k ast.Kind) error {
	return fmt.Errorf("internal error: no %s handler registered for %s", family, k)
}
