package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duskc/internal/ast"
	"duskc/internal/parser"
)

func parseSource(t *testing.T, src string) *ast.Tree {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.dsk")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	tree, errs, err := parser.ParseFile(path)
	require.NoError(t, err)
	require.Empty(t, errs, "unexpected parse diagnostics: %+v", errs)
	require.NotNil(t, tree)
	return tree
}

func TestParseFnWithArithmetic(t *testing.T) {
	tree := parseSource(t, `
fn add(a: i32, b: i32): i32 {
    let sum = a + b * 2;
    return sum;
}
`)
	require.Len(t, tree.Root.Statements, 1)
	fn, ok := tree.Root.Statements[0].(*ast.FnNode)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.True(t, fn.Params[0].IsParam)
	require.Len(t, fn.Body.Statements, 2)

	dec, ok := fn.Body.Statements[0].(*ast.DecNode)
	require.True(t, ok)
	assert.Equal(t, "sum", dec.Name)
	assert.True(t, dec.Immutable)

	add, ok := dec.Init.(*ast.BinaryExprNode)
	require.True(t, ok)
	assert.Equal(t, "+", add.Operator)
	mul, ok := add.Rhs.(*ast.BinaryExprNode)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Operator)
}

func TestParseAssignmentIsBinaryExpr(t *testing.T) {
	tree := parseSource(t, `
fn run() {
    let mut x = 1;
    x = x + 1;
}
`)
	fn := tree.Root.Statements[0].(*ast.FnNode)
	dec := fn.Body.Statements[0].(*ast.DecNode)
	assert.False(t, dec.Immutable)

	assign, ok := fn.Body.Statements[1].(*ast.BinaryExprNode)
	require.True(t, ok)
	assert.Equal(t, "=", assign.Operator)
	_, isSym := assign.Lhs.(*ast.SymbolNode)
	assert.True(t, isSym)
}

func TestParseIfElseIfChain(t *testing.T) {
	tree := parseSource(t, `
fn classify(x: i32): i32 {
    if x < 0 {
        return 0;
    } else if x == 0 {
        return 1;
    } else {
        return 2;
    }
}
`)
	fn := tree.Root.Statements[0].(*ast.FnNode)
	ifNode, ok := fn.Body.Statements[0].(*ast.IfNode)
	require.True(t, ok)
	require.NotNil(t, ifNode.FalseBlock)
	require.Len(t, ifNode.FalseBlock.Statements, 1)
	_, isNestedIf := ifNode.FalseBlock.Statements[0].(*ast.IfNode)
	assert.True(t, isNestedIf)
}

func TestParseForeachLoopAndIndex(t *testing.T) {
	tree := parseSource(t, `
fn sum(xs: [i32]): i32 {
    let mut total = 0;
    loop x in xs {
        total = total + xs[0];
    }
    return total;
}
`)
	fn := tree.Root.Statements[0].(*ast.FnNode)
	loop, ok := fn.Body.Statements[1].(*ast.LoopNode)
	require.True(t, ok)
	assert.True(t, loop.IsForeach)
	assert.Equal(t, "x", loop.Name)
	_, isSym := loop.Expr.(*ast.SymbolNode)
	assert.True(t, isSym)
}

func TestParseStructAndFieldAccess(t *testing.T) {
	tree := parseSource(t, `
struct Point {
    x: i32,
    y: i32,
}

fn getX(p: Point): i32 {
    return p.x;
}
`)
	require.Len(t, tree.Root.Statements, 2)
	st, ok := tree.Root.Statements[0].(*ast.StructNode)
	require.True(t, ok)
	assert.Equal(t, "Point", st.Name)
	require.Len(t, st.Members.Statements, 2)

	fn := tree.Root.Statements[1].(*ast.FnNode)
	ret := fn.Body.Statements[0].(*ast.ReturnNode)
	fa, ok := ret.Expr.(*ast.FieldAccessNode)
	require.True(t, ok)
	assert.Equal(t, "x", fa.Name)
}

func TestParseImplAndAffix(t *testing.T) {
	tree := parseSource(t, `
struct Vec2 {
    x: i32,
    y: i32,
}

impl Vec2 {
    fn length(self: Vec2): i32 {
        return self.x;
    }

    affix infix + (a: Vec2, b: Vec2): Vec2 {
        return a;
    }
}
`)
	impl, ok := tree.Root.Statements[1].(*ast.ImplNode)
	require.True(t, ok)
	assert.Equal(t, "Vec2", impl.Target)
	require.Len(t, impl.Members.Statements, 2)

	_, isFn := impl.Members.Statements[0].(*ast.FnNode)
	assert.True(t, isFn)

	affix, ok := impl.Members.Statements[1].(*ast.AffixNode)
	require.True(t, ok)
	assert.Equal(t, ast.Infix, affix.AffixType)
	assert.Equal(t, "+", affix.Operator)
}

func TestParseExternAndUseAndNamespace(t *testing.T) {
	tree := parseSource(t, `
use math::trig;

namespace math {
    extern {
        fn sqrt(x: i32): i32;
    }
}
`)
	use, ok := tree.Root.Statements[0].(*ast.UseNode)
	require.True(t, ok)
	assert.Equal(t, "math::trig", use.Namespace)

	ns, ok := tree.Root.Statements[1].(*ast.NamespaceNode)
	require.True(t, ok)
	assert.Equal(t, "math", ns.Name)

	ext, ok := ns.Block.Statements[0].(*ast.ExternNode)
	require.True(t, ok)
	require.Len(t, ext.Decls, 1)
	assert.Equal(t, "sqrt", ext.Decls[0].Name)
}

func TestParseArrayTupleAndAttribute(t *testing.T) {
	tree := parseSource(t, `
#[entry]
fn run(): i32 {
    let xs = [1, 2, 3];
    let pair = (1, 2);
    return xs[0];
}
`)
	fn := tree.Root.Statements[0].(*ast.FnNode)
	require.Len(t, fn.Attributes(), 1)
	assert.Equal(t, "entry", fn.Attributes()[0].Name)

	arrDec := fn.Body.Statements[0].(*ast.DecNode)
	arr, ok := arrDec.Init.(*ast.ArrayNode)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 3)

	tupDec := fn.Body.Statements[1].(*ast.DecNode)
	tup, ok := tupDec.Init.(*ast.TupleNode)
	require.True(t, ok)
	assert.Len(t, tup.Elements, 2)
}

func TestParseSyntaxErrorProducesRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dsk")
	require.NoError(t, os.WriteFile(path, []byte("fn ( {"), 0o644))

	tree, errs, err := parser.ParseFile(path)
	require.NoError(t, err)
	assert.Nil(t, tree)
	require.NotEmpty(t, errs)
	assert.Equal(t, diagnosticsCategoryParse, string(errs[0].Category))
}

const diagnosticsCategoryParse = "ParseError"
