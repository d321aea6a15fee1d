package amd64

// This file contains x86_64 instruction encoders.
// Each function returns the machine code bytes for one instruction, built
// from a small register operand set rather than a fixed register pair —
// the stack-machine code generator above this package only ever uses
// RAX/RBX/RCX/RDX plus a handful of scratch registers for its print
// routine, so the encodings below stick to the simple register-direct and
// plain register-indirect (no SIB, no RBP/R13 base) addressing forms.
//
// For background on REX prefixes, ModRM and SIB bytes, see:
// https://wiki.osdev.org/X86-64_Instruction_Encoding

// Cond is an x86 condition code (the "tttn" field of Jcc/SETcc opcodes).
type Cond byte

const (
	CondL  Cond = 0xC // less (signed)
	CondLE Cond = 0xE // less or equal (signed)
	CondG  Cond = 0xF // greater (signed)
	CondGE Cond = 0xD // greater or equal (signed)
	CondE  Cond = 0x4 // equal / zero
	CondNE Cond = 0x5 // not equal / not zero
	CondS  Cond = 0x8 // sign set (negative)
	CondNS Cond = 0x9 // sign clear (non-negative)
)

// MovImm64 encodes: movabs $imm64, reg (REX.W B8+r <imm64>)
// Loads a full 64-bit immediate into reg. Used for every absolute address
// (data slots, the print routine's string constants) since an mmap'd
// region is not guaranteed to sit below the 2GiB line a 32-bit immediate
// could reach.
func MovImm64(dst Reg, imm uint64) []byte {
	buf := make([]byte, 2, 10)
	buf[0] = rex(true, false, false, dst.ext())
	buf[1] = 0xB8 + dst.low3()
	buf = buf[:10]
	writeLE64(buf[2:], imm)
	return buf
}

// PushReg encodes: push reg (50+r)
func PushReg(r Reg) []byte {
	return []byte{rex(false, false, false, r.ext()), 0x50 + r.low3()}
}

// PopReg encodes: pop reg (58+r)
func PopReg(r Reg) []byte {
	return []byte{rex(false, false, false, r.ext()), 0x58 + r.low3()}
}

// Load32 encodes: mov dst32, [base] (8B /r)
// base must hold a plain address (never RBP/R13 — those register numbers
// trigger RIP-relative addressing in the mod=00 form this encoder uses).
func Load32(dst, base Reg) []byte {
	return []byte{rex(false, dst.ext(), false, base.ext()), 0x8B, modrm(0, dst.low3(), base.low3())}
}

// Store32 encodes: mov [base], src32 (89 /r)
func Store32(base, src Reg) []byte {
	return []byte{rex(false, src.ext(), false, base.ext()), 0x89, modrm(0, src.low3(), base.low3())}
}

// StoreByte encodes: mov byte ptr [base], src8 (88 /r), using the low byte
// of src (AL/CL/DL/BL — no REX needed to reach those, but one is emitted
// anyway for encoding uniformity).
func StoreByte(base, src Reg) []byte {
	return []byte{rex(false, src.ext(), false, base.ext()), 0x88, modrm(0, src.low3(), base.low3())}
}

// Movsxd encodes: movsxd dst64, src32 (REX.W 63 /r)
// Sign-extends a 32-bit register into a 64-bit one; dst and src may name
// the same physical register.
func Movsxd(dst, src Reg) []byte {
	return []byte{rex(true, dst.ext(), false, src.ext()), 0x63, modrm(3, dst.low3(), src.low3())}
}

// MovRegReg encodes: mov dst, src (REX.W 89 /r), both 64-bit registers.
func MovRegReg(dst, src Reg) []byte {
	return []byte{rex(true, src.ext(), false, dst.ext()), 0x89, modrm(3, src.low3(), dst.low3())}
}

// AddRegReg encodes: add dst, src (REX.W 01 /r)
func AddRegReg(dst, src Reg) []byte {
	return []byte{rex(true, src.ext(), false, dst.ext()), 0x01, modrm(3, src.low3(), dst.low3())}
}

// SubRegReg encodes: sub dst, src (REX.W 29 /r)
func SubRegReg(dst, src Reg) []byte {
	return []byte{rex(true, src.ext(), false, dst.ext()), 0x29, modrm(3, src.low3(), dst.low3())}
}

// ImulRegReg encodes: imul dst, src (REX.W 0F AF /r)
func ImulRegReg(dst, src Reg) []byte {
	return []byte{rex(true, dst.ext(), false, src.ext()), 0x0F, 0xAF, modrm(3, dst.low3(), src.low3())}
}

// AndRegReg encodes: and dst, src (REX.W 21 /r)
func AndRegReg(dst, src Reg) []byte {
	return []byte{rex(true, src.ext(), false, dst.ext()), 0x21, modrm(3, src.low3(), dst.low3())}
}

// OrRegReg encodes: or dst, src (REX.W 09 /r)
func OrRegReg(dst, src Reg) []byte {
	return []byte{rex(true, src.ext(), false, dst.ext()), 0x09, modrm(3, src.low3(), dst.low3())}
}

// XorRegReg encodes: xor dst, src (REX.W 31 /r)
func XorRegReg(dst, src Reg) []byte {
	return []byte{rex(true, src.ext(), false, dst.ext()), 0x31, modrm(3, src.low3(), dst.low3())}
}

// CmpRegReg encodes: cmp lhs, rhs (REX.W 39 /r) — sets flags for lhs-rhs.
func CmpRegReg(lhs, rhs Reg) []byte {
	return []byte{rex(true, rhs.ext(), false, lhs.ext()), 0x39, modrm(3, rhs.low3(), lhs.low3())}
}

// TestRegReg encodes: test r, r (REX.W 85 /r) — ZF set iff r == 0.
func TestRegReg(r Reg) []byte {
	return []byte{rex(true, r.ext(), false, r.ext()), 0x85, modrm(3, r.low3(), r.low3())}
}

// SetCC encodes: set<cc> dst8 (0F 90+cc /0), writing 0 or 1 into the low
// byte of dst (AL/CL/DL/BL).
func SetCC(cc Cond, dst Reg) []byte {
	return []byte{rex(false, false, false, dst.ext()), 0x0F, 0x90 + byte(cc), modrm(3, 0, dst.low3())}
}

// Cqo encodes: cqo (REX.W 99) — sign-extends RAX into RDX:RAX.
func Cqo() []byte { return []byte{0x48, 0x99} }

// IdivReg encodes: idiv r/m64 (REX.W F7 /7) — signed divide RDX:RAX by r,
// quotient in RAX, remainder in RDX.
func IdivReg(r Reg) []byte {
	return []byte{rex(true, false, false, r.ext()), 0xF7, modrm(3, 7, r.low3())}
}

// DivReg32 encodes: div r/m32 (F7 /6) — unsigned divide EDX:EAX by r,
// quotient in EAX, remainder in EDX. Used only by the print routine, which
// always divides a non-negative value.
func DivReg32(r Reg) []byte {
	return []byte{rex(false, false, false, r.ext()), 0xF7, modrm(3, 6, r.low3())}
}

// NegReg32 encodes: neg r/m32 (F7 /3)
func NegReg32(r Reg) []byte {
	return []byte{rex(false, false, false, r.ext()), 0xF7, modrm(3, 3, r.low3())}
}

// IncReg encodes: inc r/m64 (REX.W FF /0)
func IncReg(r Reg) []byte {
	return []byte{rex(true, false, false, r.ext()), 0xFF, modrm(3, 0, r.low3())}
}

// DecReg encodes: dec r/m64 (REX.W FF /1)
func DecReg(r Reg) []byte {
	return []byte{rex(true, false, false, r.ext()), 0xFF, modrm(3, 1, r.low3())}
}

// JccRel32 encodes: j<cc> rel32 (0F 80+cc <rel32>). rel32 is relative to
// the end of this instruction; callers patch it in after the jump target
// is known.
func JccRel32(cc Cond, rel32 int32) []byte {
	buf := make([]byte, 6)
	buf[0] = 0x0F
	buf[1] = 0x80 + byte(cc)
	writeLE32(buf[2:], uint32(rel32))
	return buf
}

// JmpRel32 encodes: jmp rel32 (E9 <rel32>)
func JmpRel32(rel32 int32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xE9
	writeLE32(buf[1:], uint32(rel32))
	return buf
}

// CallRel32 encodes: call rel32 (E8 <rel32>)
func CallRel32(rel32 int32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xE8
	writeLE32(buf[1:], uint32(rel32))
	return buf
}

// CallReg encodes: call reg (FF /2) — indirect call through a register
// holding an absolute address.
func CallReg(r Reg) []byte {
	return []byte{rex(false, false, false, r.ext()), 0xFF, modrm(3, 2, r.low3())}
}

// Ret encodes: ret (C3)
func Ret() []byte { return []byte{0xC3} }

// Syscall encodes: syscall (0F 05)
func Syscall() []byte { return []byte{0x0F, 0x05} }
