package codegen

import (
	"github.com/minic-lang/minic/internal/lang"
	"github.com/minic-lang/minic/internal/symtab"
	"github.com/minic-lang/minic/pkg/elf"
)

// elfHeaderSize is the on-disk size of the ELF header plus the two
// program headers (code and data) this package always emits.
const elfHeaderSize = elf.ELF64HeaderSize + 2*elf.ELF64PhdrSize

// codeLoadVAddr is the virtual address of the start of the file (the ELF
// header itself); the code segment begins one page later, after the
// builder pads the headers up to a page boundary.
const codeLoadVAddr = elf.DefaultCodeBase
const codeVAddr = codeLoadVAddr + elf.PageSize
const dataVAddr = elf.DefaultBSSBase

// GenerateELF lowers prog the same way Generate does, but bakes fixed
// load-time virtual addresses into the emitted code instead of the
// process's real mmap addresses, then packages the result as a
// standalone, statically linked ELF64 executable via pkg/elf. The
// in-process Code Buffer and Data Area are still ordinary anonymous
// mmap regions during code generation — only the addresses baked into
// `mov reg, imm64` instructions differ.
func GenerateELF(prog *lang.Program, codeCapacity, maxDataSlots int) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CapacityError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	e, err := NewEmitterAt(codeCapacity, maxDataSlots, codeVAddr, dataVAddr)
	if err != nil {
		return nil, err
	}

	table := symtab.New()
	if err := lowerBlock(e, table, prog.Main); err != nil {
		return nil, err
	}
	if err := e.Finish(); err != nil {
		return nil, err
	}

	b := elf.NewBuilder()
	b.SetEntry(uint64(codeVAddr + uintptr(e.MainEntry())))
	b.AddLoadSegment(e.Buffer().Mem()[:e.Here()], uint64(codeVAddr), elf.PF_R|elf.PF_X)
	b.AddLoadSegment(e.Data().Mem(), uint64(dataVAddr), elf.PF_R|elf.PF_W)
	return b.Build(), nil
}
