package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/lang"
)

func mustParse(t *testing.T, src string) *lang.Program {
	t.Helper()
	prog, err := lang.ParseProgram([]byte(src))
	require.NoError(t, err)
	return prog
}

func TestGenerateProducesAFinishedModule(t *testing.T) {
	prog := mustParse(t, `void main(){ int x = 1; cout << x; }`)
	mod, err := Generate(prog, DefaultCodeCapacity, DefaultMaxData)
	require.NoError(t, err)
	assert.Greater(t, mod.Emitter.Here(), mod.Emitter.MainEntry())
}

func TestGenerateUndeclaredVariableFails(t *testing.T) {
	prog := mustParse(t, `void main(){ cout << missing; }`)
	_, err := Generate(prog, DefaultCodeCapacity, DefaultMaxData)
	require.Error(t, err)
}

func TestGenerateDuplicateDeclarationFails(t *testing.T) {
	prog := mustParse(t, `void main(){ int x; int x; }`)
	_, err := Generate(prog, DefaultCodeCapacity, DefaultMaxData)
	require.Error(t, err)
}

func TestGenerateCodeCapacityTooSmallRecoversIntoError(t *testing.T) {
	prog := mustParse(t, `void main(){ int x = 1; int y = 2; int z = x + y; cout << z; }`)
	_, err := Generate(prog, 16, DefaultMaxData)
	require.Error(t, err)
	var ce *CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "code", ce.Region)
}

func TestGenerateExhaustingTempSlotsRecoversIntoError(t *testing.T) {
	// Every ** with a non-constant operand consumes 3 temp slots; a data
	// area with only 2 slots total can't satisfy even one.
	prog := mustParse(t, `void main(){ int b = 2; int e = 3; cout << b ** e; }`)
	_, err := Generate(prog, DefaultCodeCapacity, 2)
	require.Error(t, err)
	var ce *CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "data", ce.Region)
}

func TestGenerateDeterministicAcrossCompilations(t *testing.T) {
	src := `void main(){ int s = 0; for (int i = 0; i < 5; i++) { s += i * i; } cout << s; }`
	prog1 := mustParse(t, src)
	prog2 := mustParse(t, src)

	mod1, err := Generate(prog1, DefaultCodeCapacity, DefaultMaxData)
	require.NoError(t, err)
	mod2, err := Generate(prog2, DefaultCodeCapacity, DefaultMaxData)
	require.NoError(t, err)

	// The code region is a pure function of the AST up to absolute data
	// addresses, which vary between two independent mmap'd regions; the
	// lengths and entry-point offsets must still agree exactly.
	assert.Equal(t, mod1.Emitter.Here(), mod2.Emitter.Here())
	assert.Equal(t, mod1.Emitter.MainEntry(), mod2.Emitter.MainEntry())
}

func TestFoldConstHandlesNestedConstantExponent(t *testing.T) {
	expr := &lang.Exponent{
		Base:  &lang.IntLit{Value: 2},
		Power: &lang.Binary{Op: lang.OpAdd, Left: &lang.IntLit{Value: 1}, Right: &lang.IntLit{Value: 2}},
	}
	v, ok := foldConst(expr)
	require.True(t, ok)
	assert.Equal(t, int32(8), v)
}

func TestFoldConstBailsOnIdent(t *testing.T) {
	_, ok := foldConst(&lang.Ident{Name: "x"})
	assert.False(t, ok)
}

func TestFoldConstBailsOnDivisionByZero(t *testing.T) {
	expr := &lang.Binary{Op: lang.OpDiv, Left: &lang.IntLit{Value: 1}, Right: &lang.IntLit{Value: 0}}
	_, ok := foldConst(expr)
	assert.False(t, ok)
}

func TestFoldPowNonPositiveExponentIsOne(t *testing.T) {
	assert.Equal(t, int32(1), foldPow(5, 0))
	assert.Equal(t, int32(1), foldPow(5, -3))
	assert.Equal(t, int32(25), foldPow(5, 2))
}
