package codegen

import (
	"fmt"

	"github.com/minic-lang/minic/internal/lang"
	"github.com/minic-lang/minic/internal/symtab"
	"github.com/minic-lang/minic/pkg/amd64"
)

// Module is a finished, executable program: a closed Emitter plus the
// entry point the Executor should call.
type Module struct {
	Emitter *Emitter
}

// Generate lowers a parsed program directly into a fresh Emitter. It is
// the one-way fold from lang.Stmt/lang.Expr to Emitter calls that design
// note §9 asks for: the AST never calls back into codegen, this function
// walks it instead.
//
// The language has exactly one variable scope (the function body), so a
// single symtab.Table is threaded through the whole walk regardless of
// which nested block a declaration textually appears in.
func Generate(prog *lang.Program, codeCapacity, maxDataSlots int) (mod *Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CapacityError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	e, err := NewEmitter(codeCapacity, maxDataSlots)
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
	return &Module{Emitter: e}, nil
}

func lowerBlock(e *Emitter, t *symtab.Table, b *lang.Block) error {
	for _, st := range b.Stmts {
		if err := lowerStmt(e, t, st); err != nil {
			return err
		}
	}
	return nil
}

func lowerStmt(e *Emitter, t *symtab.Table, st lang.Stmt) error {
	switch s := st.(type) {
	case *lang.Empty:
		return nil

	case *lang.Block:
		return lowerBlock(e, t, s)

	case *lang.Decl:
		if s.Init != nil {
			if err := lowerExpr(e, t, s.Init); err != nil {
				return err
			}
		}
		slot, err := t.Declare(s.Name)
		if err != nil {
			return err
		}
		// Uninitialized declarations rely on the Data Area's mmap'd
		// storage starting zeroed; no store is emitted for them.
		if s.Init != nil {
			e.PopAndStore(slot)
		}
		return nil

	case *lang.Assign:
		if err := lowerExpr(e, t, s.Expr); err != nil {
			return err
		}
		slot, err := t.Resolve(s.Name)
		if err != nil {
			return err
		}
		e.PopAndStore(slot)
		return nil

	case *lang.CompoundAssign:
		slot, err := t.Resolve(s.Name)
		if err != nil {
			return err
		}
		e.PushVariable(slot)
		if err := lowerExpr(e, t, s.Expr); err != nil {
			return err
		}
		applyBinOp(e, s.Op)
		e.PopAndStore(slot)
		return nil

	case *lang.IncDec:
		slot, err := t.Resolve(s.Name)
		if err != nil {
			return err
		}
		e.PushVariable(slot)
		e.PushValue(1)
		applyBinOp(e, s.Op)
		e.PopAndStore(slot)
		return nil

	case *lang.If:
		return lowerIf(e, t, s)

	case *lang.While:
		return lowerWhile(e, t, s)

	case *lang.DoWhile:
		return lowerDoWhile(e, t, s)

	case *lang.Repeat:
		return lowerRepeat(e, t, s)

	case *lang.For:
		return lowerFor(e, t, s)

	case *lang.Cout:
		for _, item := range s.Items {
			if _, ok := item.(*lang.Endl); ok {
				e.WriteEndl()
				continue
			}
			if err := lowerExpr(e, t, item); err != nil {
				return err
			}
			e.PopAndWrite()
		}
		return nil

	default:
		return fmt.Errorf("codegen: unhandled statement type %T", st)
	}
}

// applyBinOp emits the arithmetic opcode for a compound-assignment or
// increment/decrement operator; only OpAdd and OpSub ever appear here.
func applyBinOp(e *Emitter, op lang.BinOp) {
	switch op {
	case lang.OpAdd:
		e.Add()
	case lang.OpSub:
		e.Sub()
	default:
		panic(fmt.Sprintf("codegen: unexpected compound op %v", op))
	}
}

// lowerIf emits the condition, a conditional skip over the then-branch, and
// (when present) an unconditional jump over the else-branch.
func lowerIf(e *Emitter, t *symtab.Table, s *lang.If) error {
	if err := lowerExpr(e, t, s.Cond); err != nil {
		return err
	}
	skip := e.SkipIfZero()
	thenStart := e.Here()
	if err := lowerStmt(e, t, s.Then); err != nil {
		return err
	}
	if s.Else == nil {
		afterThen := e.Here()
		e.SetOffset(skip, int32(afterThen-thenStart))
		return nil
	}
	jmp := e.Jump()
	elseStart := e.Here()
	e.SetOffset(skip, int32(elseStart-thenStart))
	if err := lowerStmt(e, t, s.Else); err != nil {
		return err
	}
	afterElse := e.Here()
	e.SetOffset(jmp, int32(afterElse-elseStart))
	return nil
}

// while (C) B.
func lowerWhile(e *Emitter, t *symtab.Table, s *lang.While) error {
	top := e.Here()
	if err := lowerExpr(e, t, s.Cond); err != nil {
		return err
	}
	skip := e.SkipIfZero()
	bodyStart := e.Here()
	if err := lowerStmt(e, t, s.Body); err != nil {
		return err
	}
	back := e.Jump()
	afterLoop := e.Here()
	e.SetOffset(skip, int32(afterLoop-bodyStart))
	e.SetOffset(back, int32(top-afterLoop))
	return nil
}

// do B while (C);
func lowerDoWhile(e *Emitter, t *symtab.Table, s *lang.DoWhile) error {
	top := e.Here()
	if err := lowerStmt(e, t, s.Body); err != nil {
		return err
	}
	if err := lowerExpr(e, t, s.Cond); err != nil {
		return err
	}
	skip := e.SkipIfZero()
	skipEnd := e.Here()
	back := e.Jump()
	afterLoop := e.Here()
	e.SetOffset(skip, int32(afterLoop-skipEnd))
	e.SetOffset(back, int32(top-afterLoop))
	return nil
}

// repeat (N) { B } executes max(N, 0) times, N evaluated once.
func lowerRepeat(e *Emitter, t *symtab.Table, s *lang.Repeat) error {
	if err := lowerExpr(e, t, s.Count); err != nil {
		return err
	}
	counter := e.AllocTemp()
	e.PopAndStore(counter)

	top := e.Here()
	e.PushVariable(counter)
	e.PushValue(0)
	e.Compare(amd64.CondG)
	skip := e.SkipIfZero()
	bodyStart := e.Here()
	if err := lowerBlock(e, t, s.Body); err != nil {
		return err
	}
	e.PushVariable(counter)
	e.PushValue(1)
	e.Sub()
	e.PopAndStore(counter)
	back := e.Jump()
	afterLoop := e.Here()
	e.SetOffset(skip, int32(afterLoop-bodyStart))
	e.SetOffset(back, int32(top-afterLoop))
	return nil
}

// for (init; cond; step) B.
func lowerFor(e *Emitter, t *symtab.Table, s *lang.For) error {
	if s.Init != nil {
		if err := lowerStmt(e, t, s.Init); err != nil {
			return err
		}
	}
	top := e.Here()

	var skip int
	hasCond := s.Cond != nil
	if hasCond {
		if err := lowerExpr(e, t, s.Cond); err != nil {
			return err
		}
		skip = e.SkipIfZero()
	}
	condEnd := e.Here()

	if err := lowerStmt(e, t, s.Body); err != nil {
		return err
	}
	if s.Step != nil {
		if err := lowerStmt(e, t, s.Step); err != nil {
			return err
		}
	}
	back := e.Jump()
	afterLoop := e.Here()
	e.SetOffset(back, int32(top-afterLoop))
	if hasCond {
		e.SetOffset(skip, int32(afterLoop-condEnd))
	}
	return nil
}

func lowerExpr(e *Emitter, t *symtab.Table, expr lang.Expr) error {
	switch ex := expr.(type) {
	case *lang.IntLit:
		e.PushValue(ex.Value)
		return nil

	case *lang.Ident:
		slot, err := t.Resolve(ex.Name)
		if err != nil {
			return err
		}
		e.PushVariable(slot)
		return nil

	case *lang.Binary:
		if err := lowerExpr(e, t, ex.Left); err != nil {
			return err
		}
		if err := lowerExpr(e, t, ex.Right); err != nil {
			return err
		}
		switch ex.Op {
		case lang.OpAdd:
			e.Add()
		case lang.OpSub:
			e.Sub()
		case lang.OpMul:
			e.Mul()
		case lang.OpDiv:
			e.Div()
		case lang.OpMod:
			e.Mod()
		case lang.OpLess:
			e.Compare(amd64.CondL)
		case lang.OpLessEq:
			e.Compare(amd64.CondLE)
		case lang.OpGreater:
			e.Compare(amd64.CondG)
		case lang.OpGreaterEq:
			e.Compare(amd64.CondGE)
		case lang.OpEq:
			e.Compare(amd64.CondE)
		case lang.OpNotEq:
			e.Compare(amd64.CondNE)
		default:
			return fmt.Errorf("codegen: unhandled binary operator %v", ex.Op)
		}
		return nil

	case *lang.Logical:
		if err := lowerExpr(e, t, ex.Left); err != nil {
			return err
		}
		if err := lowerExpr(e, t, ex.Right); err != nil {
			return err
		}
		if ex.And {
			e.And()
		} else {
			e.Or()
		}
		return nil

	case *lang.Exponent:
		return lowerExponent(e, t, ex)

	case *lang.Unary:
		if err := lowerExpr(e, t, ex.Expr); err != nil {
			return err
		}
		e.Neg()
		return nil

	default:
		return fmt.Errorf("codegen: unhandled expression type %T", expr)
	}
}

// lowerExponent folds ** at compile time whenever both operands reduce to
// constants (recursively, through +,-,*,/,% and nested ** subexpressions).
// When either operand is not foldable, a runtime loop is emitted instead of
// silently baking in a wrong constant.
func lowerExponent(e *Emitter, t *symtab.Table, ex *lang.Exponent) error {
	if v, ok := foldConst(ex.Base); ok {
		if p, ok := foldConst(ex.Power); ok {
			e.PushValue(foldPow(v, p))
			return nil
		}
	}

	baseSlot := e.AllocTemp()
	expSlot := e.AllocTemp()
	accSlot := e.AllocTemp()

	if err := lowerExpr(e, t, ex.Base); err != nil {
		return err
	}
	e.PopAndStore(baseSlot)
	if err := lowerExpr(e, t, ex.Power); err != nil {
		return err
	}
	e.PopAndStore(expSlot)

	e.PushValue(1)
	e.PopAndStore(accSlot)

	top := e.Here()
	e.PushVariable(expSlot)
	e.PushValue(0)
	e.Compare(amd64.CondG)
	skip := e.SkipIfZero()
	bodyStart := e.Here()

	e.PushVariable(accSlot)
	e.PushVariable(baseSlot)
	e.Mul()
	e.PopAndStore(accSlot)

	e.PushVariable(expSlot)
	e.PushValue(1)
	e.Sub()
	e.PopAndStore(expSlot)

	back := e.Jump()
	afterLoop := e.Here()
	e.SetOffset(skip, int32(afterLoop-bodyStart))
	e.SetOffset(back, int32(top-afterLoop))

	e.PushVariable(accSlot)
	return nil
}

// foldConst recursively evaluates a constant-only subtree of literals,
// +,-,*,/,% and ** nodes, plus unary minus. It returns ok=false as soon as
// it meets an Ident or a division/modulo by zero, rather than folding
// into a compile-time panic.
func foldConst(expr lang.Expr) (int32, bool) {
	switch ex := expr.(type) {
	case *lang.IntLit:
		return ex.Value, true
	case *lang.Binary:
		l, ok := foldConst(ex.Left)
		if !ok {
			return 0, false
		}
		r, ok := foldConst(ex.Right)
		if !ok {
			return 0, false
		}
		switch ex.Op {
		case lang.OpAdd:
			return l + r, true
		case lang.OpSub:
			return l - r, true
		case lang.OpMul:
			return l * r, true
		case lang.OpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case lang.OpMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		default:
			return 0, false
		}
	case *lang.Exponent:
		base, ok := foldConst(ex.Base)
		if !ok {
			return 0, false
		}
		power, ok := foldConst(ex.Power)
		if !ok {
			return 0, false
		}
		return foldPow(base, power), true
	case *lang.Unary:
		v, ok := foldConst(ex.Expr)
		if !ok {
			return 0, false
		}
		return -v, true
	default:
		return 0, false
	}
}

// foldPow computes base**power for a compile-time-constant, non-negative
// power; negative powers fold to 1, matching the runtime loop's own
// zero-iteration behavior for a non-positive exponent.
func foldPow(base, power int32) int32 {
	result := int32(1)
	for i := int32(0); i < power; i++ {
		result *= base
	}
	return result
}
