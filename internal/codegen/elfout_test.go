package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/pkg/elf"
)

func TestGenerateELFProducesAValidHeaderAndLoadSegments(t *testing.T) {
	prog := mustParse(t, `void main(){ int x = 3+4*5; cout << x; }`)
	out, err := GenerateELF(prog, DefaultCodeCapacity, DefaultMaxData)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(out), elf.ELF64HeaderSize)
	assert.Equal(t, byte(elf.ELFMAG0), out[0])
	assert.Equal(t, byte(elf.ELFMAG1), out[1])
	assert.Equal(t, byte(elf.ELFMAG2), out[2])
	assert.Equal(t, byte(elf.ELFMAG3), out[3])
	assert.Equal(t, byte(elf.ELFCLASS64), out[4])

	// PhNum lives at offset 56 (a uint16, little endian): two PT_LOAD
	// segments, code then data.
	phNum := uint16(out[56]) | uint16(out[57])<<8
	assert.Equal(t, uint16(2), phNum)
}

func TestGenerateELFEntryPointIsInsideCodeSegment(t *testing.T) {
	prog := mustParse(t, `void main(){ cout << 1; }`)
	out, err := GenerateELF(prog, DefaultCodeCapacity, DefaultMaxData)
	require.NoError(t, err)

	entry := uint64(0)
	for i := 0; i < 8; i++ {
		entry |= uint64(out[24+i]) << (8 * i)
	}
	assert.GreaterOrEqual(t, entry, uint64(codeVAddr))
	assert.Less(t, entry, uint64(codeVAddr)+uint64(DefaultCodeCapacity))
}

func TestGenerateELFFailsForTheSameReasonsGenerateDoes(t *testing.T) {
	prog := mustParse(t, `void main(){ cout << missing; }`)
	_, err := GenerateELF(prog, DefaultCodeCapacity, DefaultMaxData)
	require.Error(t, err)
}
