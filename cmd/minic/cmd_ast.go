package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/minic-lang/minic/internal/lang"
)

func astCommand() *cli.Command {
	return &cli.Command{
		Name:      "ast",
		Usage:     "dump the parsed tree",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			src, err := readSource(c)
			if err != nil {
				return err
			}
			prog, err := lang.ParseProgram(src)
			if err != nil {
				return err
			}
			printBlock(prog.Main, 0)
			return nil
		},
	}
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

func printBlock(b *lang.Block, depth int) {
	fmt.Printf("%sBlock\n", indent(depth))
	for _, st := range b.Stmts {
		printStmt(st, depth+1)
	}
}

func printStmt(st lang.Stmt, depth int) {
	pad := indent(depth)
	switch s := st.(type) {
	case *lang.Empty:
		fmt.Printf("%sEmpty\n", pad)
	case *lang.Block:
		printBlock(s, depth)
	case *lang.Decl:
		fmt.Printf("%sDecl %s\n", pad, s.Name)
		if s.Init != nil {
			printExpr(s.Init, depth+1)
		}
	case *lang.Assign:
		fmt.Printf("%sAssign %s\n", pad, s.Name)
		printExpr(s.Expr, depth+1)
	case *lang.CompoundAssign:
		fmt.Printf("%sCompoundAssign %s op=%v\n", pad, s.Name, s.Op)
		printExpr(s.Expr, depth+1)
	case *lang.IncDec:
		fmt.Printf("%sIncDec %s op=%v\n", pad, s.Name, s.Op)
	case *lang.If:
		fmt.Printf("%sIf\n", pad)
		printExpr(s.Cond, depth+1)
		printStmt(s.Then, depth+1)
		if s.Else != nil {
			fmt.Printf("%sElse\n", pad)
			printStmt(s.Else, depth+1)
		}
	case *lang.While:
		fmt.Printf("%sWhile\n", pad)
		printExpr(s.Cond, depth+1)
		printStmt(s.Body, depth+1)
	case *lang.DoWhile:
		fmt.Printf("%sDoWhile\n", pad)
		printStmt(s.Body, depth+1)
		printExpr(s.Cond, depth+1)
	case *lang.Repeat:
		fmt.Printf("%sRepeat\n", pad)
		printExpr(s.Count, depth+1)
		printBlock(s.Body, depth+1)
	case *lang.For:
		fmt.Printf("%sFor\n", pad)
		if s.Init != nil {
			printStmt(s.Init, depth+1)
		}
		if s.Cond != nil {
			printExpr(s.Cond, depth+1)
		}
		if s.Step != nil {
			printStmt(s.Step, depth+1)
		}
		printStmt(s.Body, depth+1)
	case *lang.Cout:
		fmt.Printf("%sCout\n", pad)
		for _, item := range s.Items {
			printExpr(item, depth+1)
		}
	default:
		fmt.Printf("%s<unknown statement %T>\n", pad, st)
	}
}

func printExpr(e lang.Expr, depth int) {
	pad := indent(depth)
	switch ex := e.(type) {
	case *lang.IntLit:
		fmt.Printf("%sIntLit %d\n", pad, ex.Value)
	case *lang.Ident:
		fmt.Printf("%sIdent %s\n", pad, ex.Name)
	case *lang.Binary:
		fmt.Printf("%sBinary op=%v\n", pad, ex.Op)
		printExpr(ex.Left, depth+1)
		printExpr(ex.Right, depth+1)
	case *lang.Logical:
		op := "or"
		if ex.And {
			op = "and"
		}
		fmt.Printf("%sLogical op=%s\n", pad, op)
		printExpr(ex.Left, depth+1)
		printExpr(ex.Right, depth+1)
	case *lang.Exponent:
		fmt.Printf("%sExponent\n", pad)
		printExpr(ex.Base, depth+1)
		printExpr(ex.Power, depth+1)
	case *lang.Unary:
		fmt.Printf("%sUnary op=-\n", pad)
		printExpr(ex.Expr, depth+1)
	case *lang.Endl:
		fmt.Printf("%sEndl\n", pad)
	default:
		fmt.Printf("%s<unknown expr %T>\n", pad, e)
	}
}
