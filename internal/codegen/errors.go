package codegen

import "fmt"

// CapacityError reports that emitting an instruction or data cell would
// overrun a fixed-size mmap'd region. It is raised as a panic at the
// point of overflow and converted back into this error at Generate's
// boundary — callers never see the panic.
type CapacityError struct {
	Region   string // "code" or "data"
	Capacity int
	Needed   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("codegen: %s region exhausted: capacity %d, needed %d", e.Region, e.Capacity, e.Needed)
}

// UnpatchedJumpError reports that Finish was called while a branch emitted
// by SkipIfZero or Jump never received a matching SetOffset.
type UnpatchedJumpError struct {
	PatchSite int
}

func (e *UnpatchedJumpError) Error() string {
	return fmt.Sprintf("codegen: jump placeholder at offset %d was never patched", e.PatchSite)
}

// FinishedError reports an emission call made after Finish.
type FinishedError struct{}

func (e *FinishedError) Error() string { return "codegen: emitter already finished" }
