// Package gas renders a program as GNU Assembler (AT&T syntax) text,
// using the same stack-machine opcodes as internal/codegen's byte
// encoder but labels instead of offset patching — useful for inspecting
// what the compiler would do without mmap'ing and running anything.
package gas

import (
	"fmt"
	"strings"

	"github.com/minic-lang/minic/internal/lang"
	"github.com/minic-lang/minic/internal/symtab"
)

// MaxData mirrors codegen.DefaultMaxData: the assembly output reserves
// this many 4-byte cells in .bss for user variables and compiler
// temporaries, sharing the same dense-slot-space convention.
const MaxData = 5000

// Generator accumulates GAS text for one program.
type Generator struct {
	out      strings.Builder
	vars     *symtab.Table
	labels   int
	nextTemp int
}

// Generate renders prog as a complete, assemblable GAS source file
// targeting x86-64 Linux with a `_start` entry point.
func Generate(prog *lang.Program) (string, error) {
	g := &Generator{vars: symtab.New(), nextTemp: MaxData - 1}
	g.emitHeader()
	if err := g.block(prog.Main); err != nil {
		return "", err
	}
	g.emitMainReturn()
	g.emitPrintInt()
	return g.out.String(), nil
}

func (g *Generator) label() string {
	g.labels++
	return fmt.Sprintf(".L%d", g.labels)
}

func (g *Generator) allocTemp() int {
	slot := g.nextTemp
	g.nextTemp--
	return slot
}

func (g *Generator) emitHeader() {
	fmt.Fprintf(&g.out, ".section .bss\n")
	fmt.Fprintf(&g.out, "    .lcomm minic_data, %d\n", MaxData*4)
	fmt.Fprintf(&g.out, "    .lcomm minic_scratch, 4\n")
	fmt.Fprintf(&g.out, "    .lcomm minic_digitbuf, 24\n\n")
	fmt.Fprintf(&g.out, ".section .data\n")
	fmt.Fprintf(&g.out, "minic_minus:   .byte '-'\n")
	fmt.Fprintf(&g.out, "minic_space:   .byte ' '\n")
	fmt.Fprintf(&g.out, "minic_newline: .byte '\\n'\n\n")
	fmt.Fprintf(&g.out, ".section .text\n")
	fmt.Fprintf(&g.out, ".globl _start\n\n")
	fmt.Fprintf(&g.out, "_start:\n")
	fmt.Fprintf(&g.out, "    call minic_main\n")
	fmt.Fprintf(&g.out, "    movq $60, %%rax\n")
	fmt.Fprintf(&g.out, "    xorq %%rdi, %%rdi\n")
	fmt.Fprintf(&g.out, "    syscall\n\n")
	fmt.Fprintf(&g.out, "minic_main:\n")
}

func (g *Generator) emitMainReturn() {
	fmt.Fprintf(&g.out, "    ret\n\n")
}

func (g *Generator) slotOperand(slot int) string {
	return fmt.Sprintf("minic_data+%d(%%rip)", slot*4)
}

func (g *Generator) block(b *lang.Block) error {
	for _, st := range b.Stmts {
		if err := g.stmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) stmt(st lang.Stmt) error {
	switch s := st.(type) {
	case *lang.Empty:
		return nil

	case *lang.Block:
		return g.block(s)

	case *lang.Decl:
		if s.Init != nil {
			if err := g.expr(s.Init); err != nil {
				return err
			}
		}
		slot, err := g.vars.Declare(s.Name)
		if err != nil {
			return err
		}
		if s.Init != nil {
			g.popInto(slot)
		}
		return nil

	case *lang.Assign:
		if err := g.expr(s.Expr); err != nil {
			return err
		}
		slot, err := g.vars.Resolve(s.Name)
		if err != nil {
			return err
		}
		g.popInto(slot)
		return nil

	case *lang.CompoundAssign:
		slot, err := g.vars.Resolve(s.Name)
		if err != nil {
			return err
		}
		g.pushSlot(slot)
		if err := g.expr(s.Expr); err != nil {
			return err
		}
		g.arith(s.Op)
		g.popInto(slot)
		return nil

	case *lang.IncDec:
		slot, err := g.vars.Resolve(s.Name)
		if err != nil {
			return err
		}
		g.pushSlot(slot)
		fmt.Fprintf(&g.out, "    movq $1, %%rax\n    pushq %%rax\n")
		g.arith(s.Op)
		g.popInto(slot)
		return nil

	case *lang.If:
		if err := g.expr(s.Cond); err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "    popq %%rax\n    testq %%rax, %%rax\n")
		if s.Else == nil {
			end := g.label()
			fmt.Fprintf(&g.out, "    jz %s\n", end)
			if err := g.stmt(s.Then); err != nil {
				return err
			}
			fmt.Fprintf(&g.out, "%s:\n", end)
			return nil
		}
		elseLbl, end := g.label(), g.label()
		fmt.Fprintf(&g.out, "    jz %s\n", elseLbl)
		if err := g.stmt(s.Then); err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "    jmp %s\n%s:\n", end, elseLbl)
		if err := g.stmt(s.Else); err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "%s:\n", end)
		return nil

	case *lang.While:
		top, end := g.label(), g.label()
		fmt.Fprintf(&g.out, "%s:\n", top)
		if err := g.expr(s.Cond); err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "    popq %%rax\n    testq %%rax, %%rax\n    jz %s\n", end)
		if err := g.stmt(s.Body); err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "    jmp %s\n%s:\n", top, end)
		return nil

	case *lang.DoWhile:
		top := g.label()
		fmt.Fprintf(&g.out, "%s:\n", top)
		if err := g.stmt(s.Body); err != nil {
			return err
		}
		if err := g.expr(s.Cond); err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "    popq %%rax\n    testq %%rax, %%rax\n    jnz %s\n", top)
		return nil

	case *lang.Repeat:
		if err := g.expr(s.Count); err != nil {
			return err
		}
		counter := g.allocTemp()
		g.popInto(counter)
		top, end := g.label(), g.label()
		fmt.Fprintf(&g.out, "%s:\n", top)
		g.pushSlot(counter)
		fmt.Fprintf(&g.out, "    movq $0, %%rax\n    pushq %%rax\n")
		g.compare(lang.OpGreater)
		fmt.Fprintf(&g.out, "    popq %%rax\n    testq %%rax, %%rax\n    jz %s\n", end)
		if err := g.block(s.Body); err != nil {
			return err
		}
		g.pushSlot(counter)
		fmt.Fprintf(&g.out, "    movq $1, %%rax\n    pushq %%rax\n")
		g.arith(lang.OpSub)
		g.popInto(counter)
		fmt.Fprintf(&g.out, "    jmp %s\n%s:\n", top, end)
		return nil

	case *lang.For:
		if s.Init != nil {
			if err := g.stmt(s.Init); err != nil {
				return err
			}
		}
		top, end := g.label(), g.label()
		fmt.Fprintf(&g.out, "%s:\n", top)
		if s.Cond != nil {
			if err := g.expr(s.Cond); err != nil {
				return err
			}
			fmt.Fprintf(&g.out, "    popq %%rax\n    testq %%rax, %%rax\n    jz %s\n", end)
		}
		if err := g.stmt(s.Body); err != nil {
			return err
		}
		if s.Step != nil {
			if err := g.stmt(s.Step); err != nil {
				return err
			}
		}
		fmt.Fprintf(&g.out, "    jmp %s\n%s:\n", top, end)
		return nil

	case *lang.Cout:
		for _, item := range s.Items {
			if _, ok := item.(*lang.Endl); ok {
				g.writeConst("minic_newline")
				continue
			}
			if err := g.expr(item); err != nil {
				return err
			}
			fmt.Fprintf(&g.out, "    popq %%rax\n    movl %%eax, minic_scratch(%%rip)\n    call minic_print_int\n")
		}
		return nil

	default:
		return fmt.Errorf("gas: unhandled statement type %T", st)
	}
}

func (g *Generator) writeConst(symbol string) {
	fmt.Fprintf(&g.out, "    movq $1, %%rax\n    movq $1, %%rdi\n    leaq %s(%%rip), %%rsi\n    movq $1, %%rdx\n    syscall\n", symbol)
}

func (g *Generator) pushSlot(slot int) {
	fmt.Fprintf(&g.out, "    movslq %s, %%rax\n    pushq %%rax\n", g.slotOperand(slot))
}

func (g *Generator) popInto(slot int) {
	fmt.Fprintf(&g.out, "    popq %%rax\n    movl %%eax, %s\n", g.slotOperand(slot))
}

func (g *Generator) arith(op lang.BinOp) {
	fmt.Fprintf(&g.out, "    popq %%rbx\n    popq %%rax\n")
	switch op {
	case lang.OpAdd:
		fmt.Fprintf(&g.out, "    addq %%rbx, %%rax\n")
	case lang.OpSub:
		fmt.Fprintf(&g.out, "    subq %%rbx, %%rax\n")
	case lang.OpMul:
		fmt.Fprintf(&g.out, "    imulq %%rbx, %%rax\n")
	case lang.OpDiv:
		fmt.Fprintf(&g.out, "    cqto\n    idivq %%rbx\n")
	case lang.OpMod:
		fmt.Fprintf(&g.out, "    cqto\n    idivq %%rbx\n    movq %%rdx, %%rax\n")
	}
	fmt.Fprintf(&g.out, "    pushq %%rax\n")
}

var ccSuffix = map[lang.BinOp]string{
	lang.OpLess: "l", lang.OpLessEq: "le", lang.OpGreater: "g", lang.OpGreaterEq: "ge",
	lang.OpEq: "e", lang.OpNotEq: "ne",
}

func (g *Generator) compare(op lang.BinOp) {
	fmt.Fprintf(&g.out, "    popq %%rbx\n    popq %%rax\n    xorq %%rcx, %%rcx\n    cmpq %%rbx, %%rax\n    set%s %%cl\n    movq %%rcx, %%rax\n    pushq %%rax\n", ccSuffix[op])
}

func (g *Generator) logical(and bool) {
	fmt.Fprintf(&g.out, "    popq %%rbx\n    popq %%rax\n")
	fmt.Fprintf(&g.out, "    testq %%rax, %%rax\n    setne %%al\n    movzbq %%al, %%rax\n")
	fmt.Fprintf(&g.out, "    testq %%rbx, %%rbx\n    setne %%bl\n    movzbq %%bl, %%rbx\n")
	if and {
		fmt.Fprintf(&g.out, "    andq %%rbx, %%rax\n")
	} else {
		fmt.Fprintf(&g.out, "    orq %%rbx, %%rax\n")
	}
	fmt.Fprintf(&g.out, "    pushq %%rax\n")
}

func (g *Generator) expr(e lang.Expr) error {
	switch ex := e.(type) {
	case *lang.IntLit:
		fmt.Fprintf(&g.out, "    movq $%d, %%rax\n    pushq %%rax\n", ex.Value)
		return nil

	case *lang.Ident:
		slot, err := g.vars.Resolve(ex.Name)
		if err != nil {
			return err
		}
		g.pushSlot(slot)
		return nil

	case *lang.Binary:
		if err := g.expr(ex.Left); err != nil {
			return err
		}
		if err := g.expr(ex.Right); err != nil {
			return err
		}
		if _, ok := ccSuffix[ex.Op]; ok {
			g.compare(ex.Op)
		} else {
			g.arith(ex.Op)
		}
		return nil

	case *lang.Logical:
		if err := g.expr(ex.Left); err != nil {
			return err
		}
		if err := g.expr(ex.Right); err != nil {
			return err
		}
		g.logical(ex.And)
		return nil

	case *lang.Exponent:
		// Unlike the byte-level encoder, this text backend always emits
		// the runtime loop: it is a debug/inspection output, not a
		// measured hot path, so skipping the constant-fold special case
		// keeps it simpler at no behavioral cost.
		return g.runtimeExponent(ex)

	case *lang.Unary:
		if err := g.expr(ex.Expr); err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "    popq %%rax\n    negq %%rax\n    pushq %%rax\n")
		return nil

	default:
		return fmt.Errorf("gas: unhandled expression type %T", e)
	}
}

func (g *Generator) runtimeExponent(ex *lang.Exponent) error {
	baseSlot, expSlot, accSlot := g.allocTemp(), g.allocTemp(), g.allocTemp()

	if err := g.expr(ex.Base); err != nil {
		return err
	}
	g.popInto(baseSlot)
	if err := g.expr(ex.Power); err != nil {
		return err
	}
	g.popInto(expSlot)
	fmt.Fprintf(&g.out, "    movq $1, %%rax\n    pushq %%rax\n")
	g.popInto(accSlot)

	top, end := g.label(), g.label()
	fmt.Fprintf(&g.out, "%s:\n", top)
	g.pushSlot(expSlot)
	fmt.Fprintf(&g.out, "    movq $0, %%rax\n    pushq %%rax\n")
	g.compare(lang.OpGreater)
	fmt.Fprintf(&g.out, "    popq %%rax\n    testq %%rax, %%rax\n    jz %s\n", end)

	g.pushSlot(accSlot)
	g.pushSlot(baseSlot)
	g.arith(lang.OpMul)
	g.popInto(accSlot)

	g.pushSlot(expSlot)
	fmt.Fprintf(&g.out, "    movq $1, %%rax\n    pushq %%rax\n")
	g.arith(lang.OpSub)
	g.popInto(expSlot)

	fmt.Fprintf(&g.out, "    jmp %s\n%s:\n", top, end)
	g.pushSlot(accSlot)
	return nil
}

// emitPrintInt renders the same signed-decimal print algorithm as
// internal/codegen's byte encoder, in AT&T assembly.
func (g *Generator) emitPrintInt() {
	fmt.Fprintf(&g.out, "minic_print_int:\n")
	fmt.Fprintf(&g.out, "    movl minic_scratch(%%rip), %%eax\n")
	fmt.Fprintf(&g.out, "    testl %%eax, %%eax\n")
	fmt.Fprintf(&g.out, "    jns 1f\n")
	g.writeConst("minic_minus")
	fmt.Fprintf(&g.out, "    movl minic_scratch(%%rip), %%eax\n")
	fmt.Fprintf(&g.out, "    negl %%eax\n")
	fmt.Fprintf(&g.out, "1:\n")
	fmt.Fprintf(&g.out, "    xorq %%rcx, %%rcx\n")
	fmt.Fprintf(&g.out, "2:\n")
	fmt.Fprintf(&g.out, "    xorl %%edx, %%edx\n")
	fmt.Fprintf(&g.out, "    movl $10, %%ebx\n")
	fmt.Fprintf(&g.out, "    divl %%ebx\n")
	fmt.Fprintf(&g.out, "    addb $'0', %%dl\n")
	fmt.Fprintf(&g.out, "    pushq %%rdx\n")
	fmt.Fprintf(&g.out, "    incq %%rcx\n")
	fmt.Fprintf(&g.out, "    testl %%eax, %%eax\n")
	fmt.Fprintf(&g.out, "    jnz 2b\n")
	fmt.Fprintf(&g.out, "    movq %%rcx, %%r11\n")
	fmt.Fprintf(&g.out, "    leaq minic_digitbuf(%%rip), %%r10\n")
	fmt.Fprintf(&g.out, "3:\n")
	fmt.Fprintf(&g.out, "    popq %%rdx\n")
	fmt.Fprintf(&g.out, "    movb %%dl, (%%r10)\n")
	fmt.Fprintf(&g.out, "    incq %%r10\n")
	fmt.Fprintf(&g.out, "    decq %%rcx\n")
	fmt.Fprintf(&g.out, "    testq %%rcx, %%rcx\n")
	fmt.Fprintf(&g.out, "    jnz 3b\n")
	fmt.Fprintf(&g.out, "    movq $1, %%rax\n")
	fmt.Fprintf(&g.out, "    movq $1, %%rdi\n")
	fmt.Fprintf(&g.out, "    leaq minic_digitbuf(%%rip), %%rsi\n")
	fmt.Fprintf(&g.out, "    movq %%r11, %%rdx\n")
	fmt.Fprintf(&g.out, "    syscall\n")
	g.writeConst("minic_space")
	fmt.Fprintf(&g.out, "    ret\n")
}
