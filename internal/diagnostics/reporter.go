package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders Records in a Rust-style source-pointing format. This is
// the external diagnostic sink referenced by spec.md section 6 - the core
// itself never formats text, it only produces Records; Reporter is the CLI
// satellite that turns them into terminal output, grounded on kanso's
// internal/errors/reporter.go.
type Reporter struct {
	source string
	lines  []string
}

// NewReporter builds a Reporter for one file's source text.
func NewReporter(source string) *Reporter {
	return &Reporter{source: source, lines: strings.Split(source, "\n")}
}

// Format renders one Record. Severity == SeverityNone renders nothing - the
// core's severity model is binary (spec.md section 6), so Reporter never
// invents a warning tier the pipeline doesn't emit.
func (r *Reporter) Format(rec Record) string {
	if rec.Severity == SeverityNone {
		return ""
	}

	var b strings.Builder
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	if rec.Code != "" {
		fmt.Fprintf(&b, "%s[%s]: %s\n", red("error"), rec.Code, rec.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s\n", red("error"), rec.Message)
	}

	width := lineNumberWidth(rec.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), rec.File, rec.Line, rec.Column)
	fmt.Fprintf(&b, "%s %s\n", indent, dim("|"))

	if rec.Line >= 1 && rec.Line <= len(r.lines) {
		line := r.lines[rec.Line-1]
		fmt.Fprintf(&b, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, rec.Line)), dim("|"), line)
		marker := strings.Repeat(" ", max0(rec.Column-1)) + red(strings.Repeat("^", max1(rec.Length)))
		fmt.Fprintf(&b, "%s %s %s\n", indent, dim("|"), marker)
	}

	b.WriteString("\n")
	return b.String()
}

// FormatAll renders every record in order.
func (r *Reporter) FormatAll(recs []Record) string {
	var b strings.Builder
	for _, rec := range recs {
		b.WriteString(r.Format(rec))
	}
	return b.String()
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		w = 3
	}
	return w
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
