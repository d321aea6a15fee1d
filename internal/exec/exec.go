//go:build linux && amd64

// Package exec implements the Executor: it remaps a finished code buffer
// executable and transfers control into it from the host process. It is
// the only package in this module that actually runs emitted machine
// code, so it is restricted to the one platform that code is valid on.
package exec

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/minic-lang/minic/internal/codegen"
)

// ErrAlreadyExecuted is returned by Run if called more than once on the
// same Executor. Re-entry is a programmer error: the code region is
// single-shot.
var ErrAlreadyExecuted = errors.New("exec: program already executed")

// Executor owns the W^X transition and teardown for one compiled Module.
// It does not itself know anything about the source language — it is
// handed a finished codegen.Module, whose Emitter supplies the entry offset.
type Executor struct {
	mod      *codegen.Module
	executed bool
	closed   bool
}

// New wraps a finished Module. The Module must have already had Finish
// called on its Emitter (codegen.Generate guarantees this).
func New(mod *codegen.Module) *Executor {
	return &Executor{mod: mod}
}

// Run flips the Code Buffer from RW to RX, calls into mainEntry, and
// restores RW before returning — so that Close's eventual Munmap always
// targets a region whose protection it put there itself, and so that a
// caller who (incorrectly) tries to Run twice hits ErrAlreadyExecuted
// before ever touching mprotect again.
func (x *Executor) Run() error {
	if x.executed {
		return ErrAlreadyExecuted
	}
	x.executed = true

	code := x.mod.Emitter.Buffer()
	mem := code.Mem()
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return err
	}
	defer unix.Mprotect(mem, unix.PROT_READ|unix.PROT_WRITE)

	entry := code.AbsAddr(x.mod.Emitter.MainEntry())
	callEntry(entry)
	return nil
}

// callEntry transfers control to a bare function at addr with no
// arguments and no return value. A Go func value is a pointer to a
// funcval struct whose first word is the code's entry PC, so the
// pointer handed to the runtime must point AT a word containing addr,
// not equal addr itself: ptr is that word's address, and casting ptr
// to *func() and dereferencing gives a callable func value that jumps
// straight into addr.
func callEntry(addr uintptr) {
	codeAddr := addr
	ptr := &codeAddr
	f := *(*func())(unsafe.Pointer(&ptr))
	f()
}

// Close releases the Code Buffer and Data Area mappings. Safe to call
// after a failed or successful Run, and safe to call more than once.
func (x *Executor) Close() error {
	if x.closed {
		return nil
	}
	x.closed = true
	var firstErr error
	if err := unix.Munmap(x.mod.Emitter.Buffer().Mem()); err != nil {
		firstErr = err
	}
	if err := unix.Munmap(x.mod.Emitter.Data().Mem()); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
