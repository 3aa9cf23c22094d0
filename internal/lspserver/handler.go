// Package lspserver SPDX-License-Identifier: Apache-2.0
//
// Package lspserver implements a glsp protocol.Handler for Dusk, grounded
// on kanso's internal/lsp/handler.go (the same Initialize/DidOpen/
// DidChange shape, URI-to-path conversion, and content-cache-behind-a-mutex
// structure), rebuilt against internal/pipeline and internal/diagnostics
// instead of kanso's contract-AST and internal/errors. Initialize advertises
// a semantic-tokens legend, but no semantic-tokens request is served.
package lspserver

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	"duskc/internal/parser"
	"duskc/internal/pipeline"
)

// SemanticTokenTypes and SemanticTokenModifiers are the legend Initialize
// advertises; Handler has no TextDocumentSemanticTokensFull method, so no
// tokens are ever encoded against it.
var SemanticTokenTypes = []string{
	"namespace", "type", "function", "variable", "parameter",
	"property", "keyword", "number", "operator",
}

var SemanticTokenModifiers = []string{
	"declaration", "readonly",
}

type fileParser struct{}

func (fileParser) ParseFile(path string) (*ast.Tree, []diagnostics.Record, error) {
	return parser.ParseFile(path)
}

// Handler implements the LSP methods this satellite advertises. Each open
// document gets its own pipeline.Assembly run on every open/change - Dusk
// files are small enough that re-running the full pipeline per edit is the
// simplest correct design, matching the source's own single-shot
// contract.Analyze(contract) call per update.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
	diags   map[string][]diagnostics.Record
}

// New constructs a Handler with empty document state.
func New() *Handler {
	return &Handler{
		content: make(map[string]string),
		diags:   make(map[string][]diagnostics.Record),
	}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("duskls: initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("duskls: initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("duskls: shutdown")
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("duskls: opened %s\n", params.TextDocument.URI)
	return h.recompile(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	return h.recompile(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(string(params.TextDocument.URI))
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	delete(h.diags, path)
	h.mu.Unlock()
	return nil
}

func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (interface{}, error) {
	return &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}, nil
}

// recompile runs the file through the pipeline and publishes whatever
// diagnostics.Records the parse/analysis phase produced (spec.md section 6
// exposes exactly those five fields; this is the satellite that turns them
// into protocol.Diagnostic).
func (h *Handler) recompile(ctx *glsp.Context, uri protocol.DocumentUri) error {
	path, err := uriToPath(string(uri))
	if err != nil {
		return fmt.Errorf("converting uri %s: %w", uri, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	h.mu.Lock()
	h.content[path] = string(content)
	h.mu.Unlock()

	asm := pipeline.New(fileParser{})
	asm.QueueFile(path)
	if err := asm.CompileWrite(discardSink{}); err != nil {
		return fmt.Errorf("compiling %s: %w", path, err)
	}

	records := asm.Diagnostics()
	h.mu.Lock()
	h.diags[path] = records
	h.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(records),
	})
	return nil
}

type discardSink struct{}

func (discardSink) Write([]byte) error { return nil }

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid uri %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
