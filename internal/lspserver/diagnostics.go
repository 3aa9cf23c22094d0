package lspserver

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"duskc/internal/diagnostics"
)

// toProtocolDiagnostics converts the core's structured Records (spec.md
// section 6's {message, line, column, offset, length}) into LSP
// diagnostics, fixing up kanso's internal/lsp/diagnostics.go 0-based
// conversion convention rather than inventing a new one.
func toProtocolDiagnostics(records []diagnostics.Record) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(records))
	for _, r := range records {
		line := uint32(0)
		if r.Line > 0 {
			line = uint32(r.Line - 1)
		}
		col := uint32(0)
		if r.Column > 0 {
			col = uint32(r.Column - 1)
		}
		length := uint32(r.Length)
		if length == 0 {
			length = 1
		}

		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: col},
				End:   protocol.Position{Line: line, Character: col + length},
			},
			Severity: ptrSeverity(toProtocolSeverity(r.Severity)),
			Source:   ptrString("duskc"),
			Message:  r.Code + ": " + r.Message,
		})
	}
	return out
}

func toProtocolSeverity(s diagnostics.Severity) protocol.DiagnosticSeverity {
	if s == diagnostics.SeverityNone {
		return protocol.DiagnosticSeverityHint
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }
func ptrString(s string) *string                                            { return &s }
