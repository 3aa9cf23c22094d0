// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	"duskc/internal/duskconfig"
	"duskc/internal/parser"
	"duskc/internal/pipeline"
)

// fileParser adapts internal/parser.ParseFile to the driver.Parser
// interface pipeline.New expects.
type fileParser struct{}

func (fileParser) ParseFile(path string) (*ast.Tree, []diagnostics.Record, error) {
	return parser.ParseFile(path)
}

// fileSink writes the finished IL buffer to a path on disk, satisfying
// internal/driver.Sink (spec.md section 2's "the file sink accepts an
// opaque byte buffer" contract).
type fileSink struct{ path string }

func (s fileSink) Write(bytes []byte) error {
	return os.WriteFile(s.path, bytes, 0o644)
}

func main() {
	cfg, err := duskconfig.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	startTime := time.Now()

	asm := pipeline.New(fileParser{})
	asm.QueueFile(cfg.InputPath)

	if err := asm.CompileWrite(fileSink{path: cfg.OutputPath}); err != nil {
		color.Red("internal error: %v", err)
		os.Exit(1)
	}

	duration := time.Since(startTime)
	records := asm.Diagnostics()

	if len(records) > 0 {
		source, readErr := os.ReadFile(cfg.InputPath)
		if readErr == nil {
			reporter := diagnostics.NewReporter(string(source))
			fmt.Print(reporter.FormatAll(records))
		}
		color.Red("compilation failed after %s", formatDuration(duration))
		os.Exit(1)
	}

	color.Green("wrote %s in %s", cfg.OutputPath, formatDuration(duration))
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1e6)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1e3)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
