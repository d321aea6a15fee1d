// Package interp is the reference tree-walking interpreter used as a
// bisimulation oracle against the compiled output: it walks the same
// lang.Program the codegen package lowers and must produce byte-identical
// stdout for any program the two are compared on.
package interp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/minic-lang/minic/internal/lang"
	"github.com/minic-lang/minic/internal/symtab"
)

// StepBudget bounds the total number of statement/loop-iteration steps a
// Run performs before giving up, so a runaway program (e.g. an
// interpreter bug, or a source program that never terminates) can't hang
// a test suite forever.
const StepBudget = 10_000_000

// ErrStepBudgetExceeded is returned by Run when StepBudget is hit.
type ErrStepBudgetExceeded struct{}

func (ErrStepBudgetExceeded) Error() string { return "interp: step budget exceeded" }

// Run walks prog and writes its cout output to w, matching the compiled
// program's observable behavior byte for byte: each printed integer is
// followed by a single space, and endl prints a bare newline.
func Run(prog *lang.Program, w io.Writer) error {
	bw := bufio.NewWriter(w)
	it := &interpreter{vars: symtab.New(), out: bw, budget: StepBudget}
	if err := it.execBlock(prog.Main); err != nil {
		return err
	}
	return bw.Flush()
}

type interpreter struct {
	vars   *symtab.Table
	values []int32
	out    *bufio.Writer
	budget int
}

func (it *interpreter) tick() error {
	it.budget--
	if it.budget <= 0 {
		return ErrStepBudgetExceeded{}
	}
	return nil
}

func (it *interpreter) declare(name string) int {
	slot, err := it.vars.Declare(name)
	if err != nil {
		panic(err)
	}
	if slot == len(it.values) {
		it.values = append(it.values, 0)
	}
	return slot
}

func (it *interpreter) set(slot int, v int32) { it.values[slot] = v }
func (it *interpreter) get(slot int) int32     { return it.values[slot] }

func (it *interpreter) execBlock(b *lang.Block) error {
	for _, st := range b.Stmts {
		if err := it.exec(st); err != nil {
			return err
		}
	}
	return nil
}

func (it *interpreter) exec(st lang.Stmt) error {
	if err := it.tick(); err != nil {
		return err
	}
	switch s := st.(type) {
	case *lang.Empty:
		return nil

	case *lang.Block:
		return it.execBlock(s)

	case *lang.Decl:
		var v int32
		if s.Init != nil {
			var err error
			v, err = it.eval(s.Init)
			if err != nil {
				return err
			}
		}
		slot := it.declare(s.Name)
		it.set(slot, v)
		return nil

	case *lang.Assign:
		v, err := it.eval(s.Expr)
		if err != nil {
			return err
		}
		slot, err := it.vars.Resolve(s.Name)
		if err != nil {
			return err
		}
		it.set(slot, v)
		return nil

	case *lang.CompoundAssign:
		slot, err := it.vars.Resolve(s.Name)
		if err != nil {
			return err
		}
		v, err := it.eval(s.Expr)
		if err != nil {
			return err
		}
		cur := it.get(slot)
		if s.Op == lang.OpAdd {
			it.set(slot, cur+v)
		} else {
			it.set(slot, cur-v)
		}
		return nil

	case *lang.IncDec:
		slot, err := it.vars.Resolve(s.Name)
		if err != nil {
			return err
		}
		cur := it.get(slot)
		if s.Op == lang.OpAdd {
			it.set(slot, cur+1)
		} else {
			it.set(slot, cur-1)
		}
		return nil

	case *lang.If:
		cond, err := it.eval(s.Cond)
		if err != nil {
			return err
		}
		if cond != 0 {
			return it.exec(s.Then)
		}
		if s.Else != nil {
			return it.exec(s.Else)
		}
		return nil

	case *lang.While:
		for {
			cond, err := it.eval(s.Cond)
			if err != nil {
				return err
			}
			if cond == 0 {
				return nil
			}
			if err := it.exec(s.Body); err != nil {
				return err
			}
			if err := it.tick(); err != nil {
				return err
			}
		}

	case *lang.DoWhile:
		for {
			if err := it.exec(s.Body); err != nil {
				return err
			}
			cond, err := it.eval(s.Cond)
			if err != nil {
				return err
			}
			if cond == 0 {
				return nil
			}
			if err := it.tick(); err != nil {
				return err
			}
		}

	case *lang.Repeat:
		n, err := it.eval(s.Count)
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if err := it.execBlock(s.Body); err != nil {
				return err
			}
			if err := it.tick(); err != nil {
				return err
			}
		}
		return nil

	case *lang.For:
		if s.Init != nil {
			if err := it.exec(s.Init); err != nil {
				return err
			}
		}
		for {
			if s.Cond != nil {
				cond, err := it.eval(s.Cond)
				if err != nil {
					return err
				}
				if cond == 0 {
					return nil
				}
			}
			if err := it.exec(s.Body); err != nil {
				return err
			}
			if s.Step != nil {
				if err := it.exec(s.Step); err != nil {
					return err
				}
			}
			if err := it.tick(); err != nil {
				return err
			}
		}

	case *lang.Cout:
		for _, item := range s.Items {
			if _, ok := item.(*lang.Endl); ok {
				fmt.Fprint(it.out, "\n")
				continue
			}
			v, err := it.eval(item)
			if err != nil {
				return err
			}
			fmt.Fprintf(it.out, "%d ", v)
		}
		return nil

	default:
		return fmt.Errorf("interp: unhandled statement type %T", st)
	}
}

func (it *interpreter) eval(expr lang.Expr) (int32, error) {
	switch ex := expr.(type) {
	case *lang.IntLit:
		return ex.Value, nil

	case *lang.Ident:
		slot, err := it.vars.Resolve(ex.Name)
		if err != nil {
			return 0, err
		}
		return it.get(slot), nil

	case *lang.Binary:
		l, err := it.eval(ex.Left)
		if err != nil {
			return 0, err
		}
		r, err := it.eval(ex.Right)
		if err != nil {
			return 0, err
		}
		switch ex.Op {
		case lang.OpAdd:
			return l + r, nil
		case lang.OpSub:
			return l - r, nil
		case lang.OpMul:
			return l * r, nil
		case lang.OpDiv:
			return l / r, nil // truncated toward zero, matching idiv
		case lang.OpMod:
			return l % r, nil // sign of the dividend, matching idiv
		case lang.OpLess:
			return boolInt(l < r), nil
		case lang.OpLessEq:
			return boolInt(l <= r), nil
		case lang.OpGreater:
			return boolInt(l > r), nil
		case lang.OpGreaterEq:
			return boolInt(l >= r), nil
		case lang.OpEq:
			return boolInt(l == r), nil
		case lang.OpNotEq:
			return boolInt(l != r), nil
		}
		return 0, fmt.Errorf("interp: unhandled binary operator %v", ex.Op)

	case *lang.Logical:
		// Both operands are always evaluated, matching the non-short-
		// circuit semantics the emitted code implements.
		l, err := it.eval(ex.Left)
		if err != nil {
			return 0, err
		}
		r, err := it.eval(ex.Right)
		if err != nil {
			return 0, err
		}
		if ex.And {
			return boolInt(l != 0 && r != 0), nil
		}
		return boolInt(l != 0 || r != 0), nil

	case *lang.Exponent:
		base, err := it.eval(ex.Base)
		if err != nil {
			return 0, err
		}
		power, err := it.eval(ex.Power)
		if err != nil {
			return 0, err
		}
		result := int32(1)
		for i := int32(0); i < power; i++ {
			result *= base
		}
		return result, nil

	case *lang.Unary:
		v, err := it.eval(ex.Expr)
		if err != nil {
			return 0, err
		}
		return -v, nil

	default:
		return 0, fmt.Errorf("interp: unhandled expression type %T", expr)
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
