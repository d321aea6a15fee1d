package codegen

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultMaxData is the default cell count of the Data Area, matching the
// ≥5000-slot floor the language's symbol table and compiler temporaries
// are allowed to assume.
const DefaultMaxData = 5000

// cellSize is the width of one integer slot: the language's only scalar
// type is a 32-bit signed int.
const cellSize = 4

// DataArea is the Code Buffer's sibling mmap region: plain read/write
// memory, never executable, holding user-variable slots, compiler
// temporaries and a few fixed scratch/constant cells the print routine
// uses. It is addressed the same way the Code Buffer is — by taking the
// absolute address of a cell and baking it into emitted code as a 64-bit
// immediate — so it must be just as immovable.
type DataArea struct {
	mem      []byte
	maxSlots int
	nextTemp int     // next compiler-temporary slot, counting down from maxSlots-1
	vbase    uintptr // non-zero overrides baseAddr, mirroring Buffer.vbase
}

// Layout, in cells/bytes, after the maxSlots user/temp cells:
//
//	scratch      4 bytes  — holds the value PopAndWrite is about to print
//	minus const  1 byte   — '-'
//	space const  1 byte   — ' '
//	newline const 1 byte  — '\n'
const (
	scratchSize = 4
	constsSize  = 3
	digitBufCap = 24 // generous upper bound on printed digits for a 64-bit value
)

// NewDataArea mmaps an anonymous region sized for maxSlots user/temp
// cells plus the fixed scratch and constant cells used by the print
// routine.
func NewDataArea(maxSlots int) (*DataArea, error) {
	return NewDataAreaAt(maxSlots, 0)
}

// NewDataAreaAt is the same as NewDataArea, except addresses baked into
// emitted code are computed against vbase instead of the real mmap
// address. See Buffer.vbase for why this exists.
func NewDataAreaAt(maxSlots int, vbase uintptr) (*DataArea, error) {
	total := maxSlots*cellSize + scratchSize + constsSize + digitBufCap
	mem, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	d := &DataArea{mem: mem, maxSlots: maxSlots, nextTemp: maxSlots - 1, vbase: vbase}
	mem[d.minusOffset()] = '-'
	mem[d.spaceOffset()] = ' '
	mem[d.newlineOffset()] = '\n'
	return d, nil
}

// Mem exposes the backing region for the Executor's mprotect/munmap calls.
func (d *DataArea) Mem() []byte { return d.mem }

func (d *DataArea) baseAddr() uintptr {
	if d.vbase != 0 {
		return d.vbase
	}
	if len(d.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&d.mem[0]))
}

// SlotAddr returns the absolute address of a user or temporary variable
// slot.
func (d *DataArea) SlotAddr(slot int) uintptr {
	return d.baseAddr() + uintptr(slot*cellSize)
}

func (d *DataArea) scratchOffset() int  { return d.maxSlots * cellSize }
func (d *DataArea) minusOffset() int    { return d.scratchOffset() + scratchSize }
func (d *DataArea) spaceOffset() int    { return d.minusOffset() + 1 }
func (d *DataArea) newlineOffset() int  { return d.spaceOffset() + 1 }
func (d *DataArea) digitBufOffset() int { return d.newlineOffset() + 1 }

// ScratchAddr returns the absolute address of the scratch cell PopAndWrite
// stages the value to print into.
func (d *DataArea) ScratchAddr() uintptr { return d.baseAddr() + uintptr(d.scratchOffset()) }

// MinusAddr, SpaceAddr and NewlineAddr return the absolute addresses of
// the print routine's single-byte string constants.
func (d *DataArea) MinusAddr() uintptr   { return d.baseAddr() + uintptr(d.minusOffset()) }
func (d *DataArea) SpaceAddr() uintptr   { return d.baseAddr() + uintptr(d.spaceOffset()) }
func (d *DataArea) NewlineAddr() uintptr { return d.baseAddr() + uintptr(d.newlineOffset()) }

// DigitBufAddr returns the absolute address of the scratch byte buffer the
// print routine assembles ASCII digits into before a single write(2).
func (d *DataArea) DigitBufAddr() uintptr { return d.baseAddr() + uintptr(d.digitBufOffset()) }

// AllocTemp hands out a fresh compiler-temporary slot, counting down from
// the top of the slot space so it can never collide with a user variable's
// dense, bottom-up index — mirroring the split used by the language this
// was modeled on, where user slots grow up from 0 and temporaries grow
// down from MAX_DATA-1.
func (d *DataArea) AllocTemp() (int, error) {
	if d.nextTemp < 0 {
		return 0, &CapacityError{Region: "data", Capacity: d.maxSlots, Needed: d.maxSlots + 1}
	}
	slot := d.nextTemp
	d.nextTemp--
	return slot, nil
}
