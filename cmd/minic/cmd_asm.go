package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/minic-lang/minic/internal/codegen/gas"
	"github.com/minic-lang/minic/internal/lang"
)

func asmCommand() *cli.Command {
	return &cli.Command{
		Name:      "asm",
		Usage:     "dump GAS (AT&T syntax) assembly instead of compiling to machine code",
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
			text, err := gas.Generate(prog)
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		},
	}
}
