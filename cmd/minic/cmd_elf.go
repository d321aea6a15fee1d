package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/minic-lang/minic/internal/codegen"
	"github.com/minic-lang/minic/internal/lang"
)

func elfCommand() *cli.Command {
	return &cli.Command{
		Name:      "elf",
		Usage:     "compile a program to a standalone ELF64 executable",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			codeCapacityFlag(),
			maxDataFlag(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "a.out", Usage: "output path"},
		},
		Action: func(c *cli.Context) error {
			src, err := readSource(c)
			if err != nil {
				return err
			}
			prog, err := lang.ParseProgram(src)
			if err != nil {
				return err
			}

			codeCapacity := c.Int("code-capacity")
			if codeCapacity <= 0 {
				codeCapacity = codegen.DefaultCodeCapacity
			}
			maxData := c.Int("max-data")
			if maxData <= 0 {
				maxData = codegen.DefaultMaxData
			}

			bin, err := codegen.GenerateELF(prog, codeCapacity, maxData)
			if err != nil {
				return err
			}
			return os.WriteFile(c.String("out"), bin, 0o755)
		},
	}
}
