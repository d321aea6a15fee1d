package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/minic-lang/minic/internal/interp"
	"github.com/minic-lang/minic/internal/lang"
)

func interpCommand() *cli.Command {
	return &cli.Command{
		Name:      "interp",
		Usage:     "run the tree-walking reference oracle instead of the compiler",
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
			return interp.Run(prog, os.Stdout)
		},
	}
}
