package codegen

import "github.com/minic-lang/minic/pkg/amd64"

// Linux x86-64 syscall numbers used by the runtime support code and by
// PopAndWrite/WriteEndl.
const (
	sysWrite = 1
)

// emitRuntimeSupport lays down, once, at the very start of the Code
// Buffer: an unconditional jump over the print routine, the print routine
// itself, and finally records mainEntry at the byte right after it. Every
// user statement is emitted starting at mainEntry.
//
// Layout:
//
//	0:            jmp mainEntry        (patched once the print routine's length is known)
//	5:            printIntEntry:
//	              ... print routine ...
//	mainEntry:    (user code starts here)
func (e *Emitter) emitRuntimeSupport() {
	skip := e.buf.Emit(amd64.JmpRel32(0))
	e.printIntEntry = e.buf.Here()
	e.emitPrintInt()
	e.mainEntry = e.buf.Here()
	e.buf.SetOffset(skip+1, int32(e.mainEntry-(skip+5)))
}

// emitPrintInt assembles the signed-decimal print routine:
//
//	if value < 0: write('-'); value = -value
//	repeatedly divide by 10, pushing ASCII digits onto the CPU stack
//	  (least-significant digit first, so popping them back off yields
//	  most-significant first)
//	pop the digits into a small buffer and write(2) it in one call
//	write(' ')
//	ret
func (e *Emitter) emitPrintInt() {
	buf := e.buf

	buf.Emit(amd64.MovImm64(amd64.RCX, uint64(e.data.ScratchAddr())))
	buf.Emit(amd64.Load32(amd64.RAX, amd64.RCX))
	buf.Emit(amd64.Movsxd(amd64.RAX, amd64.RAX)) // sign-extend so the 64-bit test sees the sign

	buf.Emit(amd64.TestRegReg(amd64.RAX))
	jnsPatch := buf.Emit(amd64.JccRel32(amd64.CondNS, 0))
	jnsTarget := jnsPatch + 6 // rel32 field starts at jnsPatch+2, instruction ends 4 bytes later

	// Negative path: write('-'), which clobbers RAX/RCX, so reload the
	// value, then value = -value and store it back.
	e.emitWriteByte(e.data.MinusAddr())
	buf.Emit(amd64.MovImm64(amd64.RCX, uint64(e.data.ScratchAddr())))
	buf.Emit(amd64.Load32(amd64.RAX, amd64.RCX))
	buf.Emit(amd64.NegReg32(amd64.RAX))
	buf.Emit(amd64.Store32(amd64.RCX, amd64.RAX))

	positive := buf.Here()
	buf.SetOffset(jnsPatch+2, int32(positive-jnsTarget))

	buf.Emit(amd64.XorRegReg(amd64.RCX, amd64.RCX)) // RCX: digit count

	divLoop := buf.Here()
	buf.Emit(amd64.XorRegReg(amd64.RDX, amd64.RDX))
	buf.Emit(amd64.MovImm64(amd64.RBX, 10))
	buf.Emit(amd64.DivReg32(amd64.RBX))
	buf.Emit([]byte{0x80, 0xC2, '0'}) // add dl, '0' (no REX needed: legacy low-byte reg, imm8)
	buf.Emit(amd64.PushReg(amd64.RDX))
	buf.Emit(amd64.IncReg(amd64.RCX))
	buf.Emit(amd64.TestRegReg(amd64.RAX))
	jnzPatch := buf.Emit(amd64.JccRel32(amd64.CondNE, 0))
	buf.SetOffset(jnzPatch+2, int32(divLoop-(jnzPatch+6)))

	buf.Emit(amd64.MovRegReg(amd64.R11, amd64.RCX)) // save digit count
	buf.Emit(amd64.MovImm64(amd64.R10, uint64(e.data.DigitBufAddr())))

	popLoop := buf.Here()
	buf.Emit(amd64.PopReg(amd64.RDX))
	buf.Emit(amd64.StoreByte(amd64.R10, amd64.RDX))
	buf.Emit(amd64.IncReg(amd64.R10))
	buf.Emit(amd64.DecReg(amd64.RCX))
	buf.Emit(amd64.TestRegReg(amd64.RCX))
	jnzPopPatch := buf.Emit(amd64.JccRel32(amd64.CondNE, 0))
	buf.SetOffset(jnzPopPatch+2, int32(popLoop-(jnzPopPatch+6)))

	// write(1, digitBuf, digitCount)
	buf.Emit(amd64.MovImm64(amd64.RAX, sysWrite))
	buf.Emit(amd64.MovImm64(amd64.RDI, 1))
	buf.Emit(amd64.MovImm64(amd64.RSI, uint64(e.data.DigitBufAddr())))
	buf.Emit(amd64.MovRegReg(amd64.RDX, amd64.R11))
	buf.Emit(amd64.Syscall())

	e.emitWriteByte(e.data.SpaceAddr())

	buf.Emit(amd64.Ret())
}

// emitWriteByte emits a direct write(1, addr, 1) syscall sequence inline —
// used for the print routine's '-'/' ' constants and for WriteEndl's
// newline, none of which go through printIntEntry.
func (e *Emitter) emitWriteByte(addr uintptr) {
	buf := e.buf
	buf.Emit(amd64.MovImm64(amd64.RAX, sysWrite))
	buf.Emit(amd64.MovImm64(amd64.RDI, 1))
	buf.Emit(amd64.MovImm64(amd64.RSI, uint64(addr)))
	buf.Emit(amd64.MovImm64(amd64.RDX, 1))
	buf.Emit(amd64.Syscall())
}

// WriteEndl emits cout << endl's effect directly: a single inline
// write(1, "\n", 1), with no call through printIntEntry.
func (e *Emitter) WriteEndl() {
	e.checkOpen()
	e.emitWriteByte(e.data.NewlineAddr())
}
