// Package parser SPDX-License-Identifier: Apache-2.0
package parser

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"

	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	dusklexer "duskc/internal/lexer"
)

var participleParser = participle.MustBuild[Program](
	participle.Lexer(dusklexer.DuskLexer),
	participle.Elide("Whitespace", "Comment", "DocComment"),
	participle.UseLookahead(4),
)

// ParseFile reads and parses one Dusk source file. Its signature matches
// internal/driver.Parser's ParseFile method, so callers wrap it in a
// one-line adapter type to satisfy that interface. A structural syntax error is reported as a
// ParseError Record rather than a Go error - only an I/O failure reading
// the file itself is returned as an error, per spec.md section 4.2's
// contract that a parse failure gates only that one file out of the
// pipeline. Grounded on kanso's grammar/parser.go ParseFile, with the
// fatih/color caret rendering split out into internal/diagnostics.Reporter
// (a satellite concern, not the core parser's job).
func ParseFile(path string) (*ast.Tree, []diagnostics.Record, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	program, err := participleParser.ParseString(path, string(source))
	if err != nil {
		return nil, []diagnostics.Record{parseErrorRecord(path, err)}, nil
	}

	tree := &ast.Tree{
		Path:   path,
		Root:   buildProgram(program),
		Source: string(source),
	}
	return tree, nil, nil
}

func parseErrorRecord(path string, err error) diagnostics.Record {
	if pe, ok := err.(participle.Error); ok {
		p := pe.Position()
		return diagnostics.New(diagnostics.CategoryParse, diagnostics.ErrParse, path, pe.Message(),
			ast.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}, 1)
	}
	return diagnostics.New(diagnostics.CategoryParse, diagnostics.ErrParse, path, err.Error(), ast.Position{}, 1)
}
