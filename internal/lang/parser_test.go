package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := ParseProgram([]byte(src))
	require.NoError(t, err)
	return prog
}

func TestParseEmptyMain(t *testing.T) {
	prog := parseOK(t, "void main() {}")
	assert.Empty(t, prog.Main.Stmts)
}

func TestParseDeclAndAssign(t *testing.T) {
	prog := parseOK(t, "void main() { int x = 1; x = x + 2; }")
	require.Len(t, prog.Main.Stmts, 2)

	decl, ok := prog.Main.Stmts[0].(*Decl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	require.NotNil(t, decl.Init)
	lit, ok := decl.Init.(*IntLit)
	require.True(t, ok)
	assert.Equal(t, int32(1), lit.Value)

	assign, ok := prog.Main.Stmts[1].(*Assign)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
	bin, ok := assign.Expr.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Op)
}

func TestParseCompoundAssignAndIncDec(t *testing.T) {
	prog := parseOK(t, "void main() { int x; x += 1; x -= 2; x++; x--; }")
	require.Len(t, prog.Main.Stmts, 5)

	ca, ok := prog.Main.Stmts[1].(*CompoundAssign)
	require.True(t, ok)
	assert.Equal(t, OpAdd, ca.Op)

	ca2, ok := prog.Main.Stmts[2].(*CompoundAssign)
	require.True(t, ok)
	assert.Equal(t, OpSub, ca2.Op)

	inc, ok := prog.Main.Stmts[3].(*IncDec)
	require.True(t, ok)
	assert.Equal(t, OpAdd, inc.Op)

	dec, ok := prog.Main.Stmts[4].(*IncDec)
	require.True(t, ok)
	assert.Equal(t, OpSub, dec.Op)
}

func TestParseIfElse(t *testing.T) {
	prog := parseOK(t, "void main() { if (1) { int a; } else { int b; } }")
	require.Len(t, prog.Main.Stmts, 1)
	ifStmt, ok := prog.Main.Stmts[0].(*If)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Then)
	assert.NotNil(t, ifStmt.Else)
}

func TestParseLoops(t *testing.T) {
	prog := parseOK(t, `void main() {
		while (1) { }
		do { } while (1);
		repeat (5) { }
		for (int i = 0; i < 5; i++) { }
	}`)
	require.Len(t, prog.Main.Stmts, 4)
	_, ok := prog.Main.Stmts[0].(*While)
	assert.True(t, ok)
	_, ok = prog.Main.Stmts[1].(*DoWhile)
	assert.True(t, ok)
	repeat, ok := prog.Main.Stmts[2].(*Repeat)
	require.True(t, ok)
	assert.NotNil(t, repeat.Body)
	forStmt, ok := prog.Main.Stmts[3].(*For)
	require.True(t, ok)
	assert.NotNil(t, forStmt.Init)
	assert.NotNil(t, forStmt.Cond)
	assert.NotNil(t, forStmt.Step)
}

func TestParseForWithOmittedClauses(t *testing.T) {
	prog := parseOK(t, "void main() { for (;;) { } }")
	forStmt, ok := prog.Main.Stmts[0].(*For)
	require.True(t, ok)
	assert.Nil(t, forStmt.Init)
	assert.Nil(t, forStmt.Cond)
	assert.Nil(t, forStmt.Step)
}

func TestParseCoutChainWithEndl(t *testing.T) {
	prog := parseOK(t, "void main() { cout << 1 << endl << 2; }")
	cout, ok := prog.Main.Stmts[0].(*Cout)
	require.True(t, ok)
	require.Len(t, cout.Items, 3)
	_, ok = cout.Items[0].(*IntLit)
	assert.True(t, ok)
	_, ok = cout.Items[1].(*Endl)
	assert.True(t, ok)
	_, ok = cout.Items[2].(*IntLit)
	assert.True(t, ok)
}

func TestParseLogicalOperatorsAreKeywords(t *testing.T) {
	prog := parseOK(t, "void main() { int x = 1 or 2 and 3; }")
	decl := prog.Main.Stmts[0].(*Decl)
	or, ok := decl.Init.(*Logical)
	require.True(t, ok)
	assert.False(t, or.And)
	and, ok := or.Right.(*Logical)
	require.True(t, ok)
	assert.True(t, and.And)
}

func TestParsePrecedencePercentBindsLikeRelational(t *testing.T) {
	// 1 + 2 % 3 must parse as (1 + 2) % 3, since % sits below + in the
	// relational tier rather than beside * and /.
	prog := parseOK(t, "void main() { int x = 1 + 2 % 3; }")
	decl := prog.Main.Stmts[0].(*Decl)
	top, ok := decl.Init.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpMod, top.Op)
	_, ok = top.Right.(*IntLit)
	assert.True(t, ok)
	lhs, ok := top.Left.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpAdd, lhs.Op)
}

func TestParseExponentRightAssociative(t *testing.T) {
	prog := parseOK(t, "void main() { int x = 2 ** 3 ** 2; }")
	decl := prog.Main.Stmts[0].(*Decl)
	top, ok := decl.Init.(*Exponent)
	require.True(t, ok)
	_, ok = top.Base.(*IntLit)
	assert.True(t, ok)
	inner, ok := top.Power.(*Exponent)
	require.True(t, ok)
	_, ok = inner.Base.(*IntLit)
	assert.True(t, ok)
	_, ok = inner.Power.(*IntLit)
	assert.True(t, ok)
}

func TestParseUnaryMinus(t *testing.T) {
	prog := parseOK(t, "void main() { int n = -7; }")
	decl := prog.Main.Stmts[0].(*Decl)
	u, ok := decl.Init.(*Unary)
	require.True(t, ok)
	lit, ok := u.Expr.(*IntLit)
	require.True(t, ok)
	assert.Equal(t, int32(7), lit.Value)
}

func TestParseUnaryMinusBindsTighterThanExponent(t *testing.T) {
	prog := parseOK(t, "void main() { int x = -2 ** 2; }")
	decl := prog.Main.Stmts[0].(*Decl)
	exp, ok := decl.Init.(*Exponent)
	require.True(t, ok)
	_, ok = exp.Base.(*Unary)
	assert.True(t, ok)
}

func TestParseParenthesizedExpression(t *testing.T) {
	prog := parseOK(t, "void main() { int x = (1 + 2) * 3; }")
	decl := prog.Main.Stmts[0].(*Decl)
	top, ok := decl.Init.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpMul, top.Op)
	_, ok = top.Left.(*Binary)
	assert.True(t, ok)
}

func TestParseErrorOnMissingSemicolon(t *testing.T) {
	_, err := ParseProgram([]byte("void main() { int x = 1 }"))
	require.Error(t, err)
	var synErr *SyntaxError
	assert.ErrorAs(t, err, &synErr)
}

func TestParseErrorOnTrailingTokens(t *testing.T) {
	_, err := ParseProgram([]byte("void main() { } garbage"))
	require.Error(t, err)
}

func TestParseErrorOnUnterminatedBlock(t *testing.T) {
	_, err := ParseProgram([]byte("void main() { int x;"))
	require.Error(t, err)
}
