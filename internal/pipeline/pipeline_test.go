package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duskc/internal/ast"
	"duskc/internal/diagnostics"
	"duskc/internal/parser"
	"duskc/internal/pipeline"
)

type fileParser struct{}

func (fileParser) ParseFile(path string) (*ast.Tree, []diagnostics.Record, error) {
	return parser.ParseFile(path)
}

type bufSink struct{ bytes []byte }

func (b *bufSink) Write(data []byte) error {
	b.bytes = data
	return nil
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.dsk")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestPipelineCompilesArithmeticFunction(t *testing.T) {
	path := writeSource(t, `
fn add(a: i32, b: i32): i32 {
    let sum = a + b;
    return sum;
}
`)
	asm := pipeline.New(fileParser{})
	asm.QueueFile(path)

	var sink bufSink
	err := asm.CompileWrite(&sink)
	require.NoError(t, err)
	assert.Empty(t, asm.Diagnostics())
	assert.NotEmpty(t, sink.bytes)
}

func TestPipelineReportsUndefinedSymbol(t *testing.T) {
	path := writeSource(t, `
fn run(): i32 {
    return missing;
}
`)
	asm := pipeline.New(fileParser{})
	asm.QueueFile(path)

	var sink bufSink
	err := asm.CompileWrite(&sink)
	require.NoError(t, err)
	require.NotEmpty(t, asm.Diagnostics())
	assert.Equal(t, diagnostics.ErrUndefinedSymbol, asm.Diagnostics()[0].Code)
}

func TestPipelineReportsAssignToImmutable(t *testing.T) {
	path := writeSource(t, `
fn run(): i32 {
    let x = 1;
    x = 2;
    return x;
}
`)
	asm := pipeline.New(fileParser{})
	asm.QueueFile(path)

	var sink bufSink
	err := asm.CompileWrite(&sink)
	require.NoError(t, err)
	require.NotEmpty(t, asm.Diagnostics())
	assert.Equal(t, diagnostics.ErrAssignImmutable, asm.Diagnostics()[0].Code)
}

func TestPipelineCompilesLoopAndCondition(t *testing.T) {
	path := writeSource(t, `
fn countdown(n: i32): i32 {
    let mut i = n;
    loop {
        if i == 0 {
            break;
        }
        i = i - 1;
    }
    return i;
}
`)
	asm := pipeline.New(fileParser{})
	asm.QueueFile(path)

	var sink bufSink
	err := asm.CompileWrite(&sink)
	require.NoError(t, err)
	assert.Empty(t, asm.Diagnostics())
	assert.NotEmpty(t, sink.bytes)
}

func TestPipelineCompilesStructFieldAccess(t *testing.T) {
	path := writeSource(t, `
struct Point {
    x: i32,
    y: i32,
}

fn getX(p: Point): i32 {
    return p.x;
}
`)
	asm := pipeline.New(fileParser{})
	asm.QueueFile(path)

	var sink bufSink
	err := asm.CompileWrite(&sink)
	require.NoError(t, err)
	assert.Empty(t, asm.Diagnostics())
	assert.NotEmpty(t, sink.bytes)
}
