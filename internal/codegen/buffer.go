package codegen

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultCodeCapacity is the default size of the Code Buffer, well above
// the 5000-byte floor a straight-line or modestly looping toy program
// needs.
const DefaultCodeCapacity = 64 * 1024

// Buffer is a fixed-capacity, append-only byte region backed by an
// anonymous mmap mapping rather than a growable Go slice. Taking the
// address of a byte mid-buffer (for a jump target or a call site) and
// handing it to emitted code as a 64-bit immediate is only safe if that
// address can never move; a slice behind append() can reallocate, an
// mmap'd region never does.
type Buffer struct {
	mem   []byte // PROT_READ|PROT_WRITE until Executor flips it to PROT_EXEC
	cur   int
	vbase uintptr // non-zero overrides BaseAddr, for targeting a fixed ELF load address
}

// NewBuffer mmaps an anonymous, zero-filled region of the given capacity.
// Addresses baked into emitted code are the region's real mmap address.
func NewBuffer(capacity int) (*Buffer, error) {
	return NewBufferAt(capacity, 0)
}

// NewBufferAt is the same as NewBuffer, except addresses reported by
// BaseAddr/AbsAddr are computed against vbase instead of the real mmap
// address — used by GenerateELF to bake in the fixed load address a
// standalone executable will run at, while still emitting into ordinary
// process memory during code generation.
func NewBufferAt(capacity int, vbase uintptr) (*Buffer, error) {
	mem, err := unix.Mmap(-1, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	return &Buffer{mem: mem, vbase: vbase}, nil
}

// Mem exposes the backing region so the Executor can mprotect/munmap it.
func (b *Buffer) Mem() []byte { return b.mem }

// Here returns the current write offset — the address a jump or call
// emitted right now would target if something jumped to "here".
func (b *Buffer) Here() int { return b.cur }

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int { return len(b.mem) }

func (b *Buffer) reserve(n int) {
	if b.cur+n > len(b.mem) {
		panic(&CapacityError{Region: "code", Capacity: len(b.mem), Needed: b.cur + n})
	}
}

// Emit appends raw bytes, most commonly the output of a pkg/amd64 encoder.
func (b *Buffer) Emit(bytes []byte) int {
	b.reserve(len(bytes))
	start := b.cur
	copy(b.mem[b.cur:], bytes)
	b.cur += len(bytes)
	return start
}

// EmitByte appends one byte.
func (b *Buffer) EmitByte(x byte) int {
	b.reserve(1)
	start := b.cur
	b.mem[b.cur] = x
	b.cur++
	return start
}

// EmitI32 appends a little-endian 32-bit placeholder or immediate and
// returns the offset it was written at, for later patching via SetOffset.
func (b *Buffer) EmitI32(x int32) int {
	b.reserve(4)
	start := b.cur
	binary.LittleEndian.PutUint32(b.mem[b.cur:], uint32(x))
	b.cur += 4
	return start
}

// SetOffset overwrites the 4-byte little-endian field at patchSite with
// delta. patchSite must have been returned by EmitI32, Emit (for a
// four-byte rel32 tail) or one of the Emitter's branch-emitting methods.
func (b *Buffer) SetOffset(patchSite int, delta int32) {
	binary.LittleEndian.PutUint32(b.mem[patchSite:], uint32(delta))
}

// BaseAddr returns the absolute address of byte 0 of the region. Valid
// only after the region has been mmap'd and never moved since — true for
// the lifetime of a Buffer.
func (b *Buffer) BaseAddr() uintptr {
	if b.vbase != 0 {
		return b.vbase
	}
	if len(b.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b.mem[0]))
}

// AbsAddr returns the absolute address corresponding to a buffer-relative
// offset.
func (b *Buffer) AbsAddr(offset int) uintptr {
	return b.BaseAddr() + uintptr(offset)
}
