package codegen

import "github.com/minic-lang/minic/pkg/amd64"

// Emitter is the stack-machine instruction emitter, fronted by the Code
// Buffer and Data Area it owns. It is a pure sink: it
// knows nothing about the AST that drives it, only about pushing and
// popping 64-bit words on the CPU stack and reading/writing Data Area
// cells. internal/codegen/lower.go is the one-way fold from AST to calls
// on this type.
type Emitter struct {
	buf  *Buffer
	data *DataArea

	printIntEntry int
	mainEntry     int

	pending  map[int]struct{} // patch sites from SkipIfZero/Jump awaiting SetOffset
	finished bool
}

// NewEmitter mmaps a Code Buffer and Data Area of the given capacities and
// immediately lays down the Runtime Support Emitter's prologue jump and
// print routine.
func NewEmitter(codeCapacity, maxDataSlots int) (*Emitter, error) {
	return NewEmitterAt(codeCapacity, maxDataSlots, 0, 0)
}

// NewEmitterAt is the same as NewEmitter, except addresses baked into
// emitted code are computed against codeVBase/dataVBase instead of the
// real mmap addresses. GenerateELF uses this to target the fixed load
// addresses a standalone executable will run at; Generate uses plain
// NewEmitter since in-process execution runs at the real mmap address.
func NewEmitterAt(codeCapacity, maxDataSlots int, codeVBase, dataVBase uintptr) (*Emitter, error) {
	buf, err := NewBufferAt(codeCapacity, codeVBase)
	if err != nil {
		return nil, err
	}
	data, err := NewDataAreaAt(maxDataSlots, dataVBase)
	if err != nil {
		return nil, err
	}
	e := &Emitter{buf: buf, data: data, pending: make(map[int]struct{})}
	e.emitRuntimeSupport()
	return e, nil
}

// Buffer and Data expose the underlying regions, mainly for the Executor
// and for tests that want to poke at raw bytes.
func (e *Emitter) Buffer() *Buffer   { return e.buf }
func (e *Emitter) Data() *DataArea   { return e.data }
func (e *Emitter) MainEntry() int    { return e.mainEntry }
func (e *Emitter) Here() int         { return e.buf.Here() }

func (e *Emitter) checkOpen() {
	if e.finished {
		panic(&FinishedError{})
	}
}

// AllocTemp hands out a fresh compiler-temporary Data Area slot.
func (e *Emitter) AllocTemp() int {
	e.checkOpen()
	slot, err := e.data.AllocTemp()
	if err != nil {
		panic(err)
	}
	return slot
}

// PushValue emits: mov rax, imm64 value; push rax
func (e *Emitter) PushValue(value int32) {
	e.checkOpen()
	e.buf.Emit(amd64.MovImm64(amd64.RAX, uint64(int64(value))))
	e.buf.Emit(amd64.PushReg(amd64.RAX))
}

// PushVariable emits: mov rax, imm64 &M[slot]; mov eax,[rax]; movsx rax,eax; push rax
func (e *Emitter) PushVariable(slot int) {
	e.checkOpen()
	e.buf.Emit(amd64.MovImm64(amd64.RAX, uint64(e.data.SlotAddr(slot))))
	e.buf.Emit(amd64.Load32(amd64.RAX, amd64.RAX))
	e.buf.Emit(amd64.Movsxd(amd64.RAX, amd64.RAX))
	e.buf.Emit(amd64.PushReg(amd64.RAX))
}

// PopAndStore emits: pop rax; mov rcx, imm64 &M[slot]; mov [rcx], eax
func (e *Emitter) PopAndStore(slot int) {
	e.checkOpen()
	e.buf.Emit(amd64.PopReg(amd64.RAX))
	e.buf.Emit(amd64.MovImm64(amd64.RCX, uint64(e.data.SlotAddr(slot))))
	e.buf.Emit(amd64.Store32(amd64.RCX, amd64.RAX))
}

// PopAndWrite emits: pop rax; mov [scratch], eax; call printIntEntry
func (e *Emitter) PopAndWrite() {
	e.checkOpen()
	e.buf.Emit(amd64.PopReg(amd64.RAX))
	e.buf.Emit(amd64.MovImm64(amd64.RCX, uint64(e.data.ScratchAddr())))
	e.buf.Emit(amd64.Store32(amd64.RCX, amd64.RAX))
	callSite := e.buf.Emit(amd64.CallRel32(0))
	e.buf.SetOffset(callSite+1, int32(e.printIntEntry-(callSite+5)))
}

// binaryOp pops rbx then rax, computes into rax via op, and pushes rax.
func (e *Emitter) binaryOp(op func()) {
	e.buf.Emit(amd64.PopReg(amd64.RBX))
	e.buf.Emit(amd64.PopReg(amd64.RAX))
	op()
	e.buf.Emit(amd64.PushReg(amd64.RAX))
}

// Add emits the PopPopAddPush opcode.
func (e *Emitter) Add() {
	e.checkOpen()
	e.binaryOp(func() { e.buf.Emit(amd64.AddRegReg(amd64.RAX, amd64.RBX)) })
}

// Sub emits the PopPopSubPush opcode.
func (e *Emitter) Sub() {
	e.checkOpen()
	e.binaryOp(func() { e.buf.Emit(amd64.SubRegReg(amd64.RAX, amd64.RBX)) })
}

// Mul emits the PopPopMulPush opcode.
func (e *Emitter) Mul() {
	e.checkOpen()
	e.binaryOp(func() { e.buf.Emit(amd64.ImulRegReg(amd64.RAX, amd64.RBX)) })
}

// Div emits the PopPopDivPush opcode: truncating signed division. Division
// by zero is not diagnosed here — it faults at run time, exactly as an
// unchecked native idiv would.
func (e *Emitter) Div() {
	e.checkOpen()
	e.binaryOp(func() {
		e.buf.Emit(amd64.Cqo())
		e.buf.Emit(amd64.IdivReg(amd64.RBX))
	})
}

// Mod emits the same division, pushing the remainder (sign of the
// dividend, per native idiv) instead of the quotient.
func (e *Emitter) Mod() {
	e.checkOpen()
	e.binaryOp(func() {
		e.buf.Emit(amd64.Cqo())
		e.buf.Emit(amd64.IdivReg(amd64.RBX))
		e.buf.Emit(amd64.MovRegReg(amd64.RAX, amd64.RDX))
	})
}

// Neg emits PopNegPush: pop rax; neg eax; movsxd rax,eax; push rax. The
// 32-bit neg followed by a re-sign-extend keeps every value on the stack
// sign-extended into the full 64 bits, the invariant the rest of the
// arithmetic ops rely on.
func (e *Emitter) Neg() {
	e.checkOpen()
	e.buf.Emit(amd64.PopReg(amd64.RAX))
	e.buf.Emit(amd64.NegReg32(amd64.RAX))
	e.buf.Emit(amd64.Movsxd(amd64.RAX, amd64.RAX))
	e.buf.Emit(amd64.PushReg(amd64.RAX))
}

// Compare emits a PopPopComparePush variant for the given condition:
// pop rbx; pop rax; xor rcx,rcx; cmp rax,rbx; set<cc> cl; push rcx
func (e *Emitter) Compare(cc amd64.Cond) {
	e.checkOpen()
	e.binaryOp(func() {
		e.buf.Emit(amd64.XorRegReg(amd64.RCX, amd64.RCX))
		e.buf.Emit(amd64.CmpRegReg(amd64.RAX, amd64.RBX))
		e.buf.Emit(amd64.SetCC(cc, amd64.RCX))
		e.buf.Emit(amd64.MovRegReg(amd64.RAX, amd64.RCX))
	})
}

// materializeBool overwrites a register with 1 if it is non-zero, 0
// otherwise — used so And/Or treat any non-zero operand as true, matching
// the source language's C-like truthiness instead of requiring operands
// to already be a strict 0/1 boolean.
func (e *Emitter) materializeBool(dst, tmp amd64.Reg) {
	e.buf.Emit(amd64.XorRegReg(tmp, tmp))
	e.buf.Emit(amd64.TestRegReg(dst))
	e.buf.Emit(amd64.SetCC(amd64.CondNE, tmp))
	e.buf.Emit(amd64.MovRegReg(dst, tmp))
}

// And emits the PopPopAndPush opcode: both operands are always evaluated
// (no short-circuiting, matching the original's non-short-circuit
// CodeEvaluate), each coerced to 0/1, then combined with a bitwise and.
func (e *Emitter) And() {
	e.checkOpen()
	e.binaryOp(func() {
		e.materializeBool(amd64.RAX, amd64.RCX)
		e.materializeBool(amd64.RBX, amd64.RCX)
		e.buf.Emit(amd64.AndRegReg(amd64.RAX, amd64.RBX))
	})
}

// Or emits the PopPopOrPush opcode, same shape as And but with a bitwise or.
func (e *Emitter) Or() {
	e.checkOpen()
	e.binaryOp(func() {
		e.materializeBool(amd64.RAX, amd64.RCX)
		e.materializeBool(amd64.RBX, amd64.RCX)
		e.buf.Emit(amd64.OrRegReg(amd64.RAX, amd64.RBX))
	})
}

// SkipIfZero emits: pop rax; test rax,rax; jz rel32 <placeholder>
// and returns the patch site of the placeholder, to be resolved by a
// later SetOffset call.
func (e *Emitter) SkipIfZero() int {
	e.checkOpen()
	e.buf.Emit(amd64.PopReg(amd64.RAX))
	e.buf.Emit(amd64.TestRegReg(amd64.RAX))
	site := e.buf.Emit(amd64.JccRel32(amd64.CondE, 0))
	patchSite := site + 2
	e.pending[patchSite] = struct{}{}
	return patchSite
}

// Jump emits an unconditional jmp rel32 <placeholder> and returns its
// patch site.
func (e *Emitter) Jump() int {
	e.checkOpen()
	site := e.buf.Emit(amd64.JmpRel32(0))
	patchSite := site + 1
	e.pending[patchSite] = struct{}{}
	return patchSite
}

// SetOffset resolves a placeholder returned by SkipIfZero or Jump. delta
// must already be target-(patchSite+4); callers compute it from two Here()
// marks.
func (e *Emitter) SetOffset(patchSite int, delta int32) {
	e.checkOpen()
	e.buf.SetOffset(patchSite, delta)
	delete(e.pending, patchSite)
}

// Finish emits the closing ret that returns from mainEntry to the caller
// and marks the emitter closed. It fails, emitting nothing, if any
// SkipIfZero/Jump placeholder never received a matching SetOffset — an
// emitter-layer programmer error the lowering pass should never trigger
// on a well-formed program.
func (e *Emitter) Finish() error {
	if e.finished {
		return &FinishedError{}
	}
	for site := range e.pending {
		return &UnpatchedJumpError{PatchSite: site}
	}
	e.buf.Emit(amd64.Ret())
	e.finished = true
	return nil
}
