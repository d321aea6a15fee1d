// Command minic is the CLI driver for the compiler and its tree-walking
// reference oracle: it turns a source file into either executed output
// (run/build), a standalone ELF file (elf), GAS assembly text (asm), an
// intermediate dump (tokens/ast), or an interpreted run (interp).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "minic",
		Usage: "compile and run the toy C-like language straight to x86-64",
		Commands: []*cli.Command{
			runCommand(),
			buildCommand(),
			elfCommand(),
			asmCommand(),
			tokensCommand(),
			astCommand(),
			interpCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func codeCapacityFlag() cli.Flag {
	return &cli.IntFlag{Name: "code-capacity", Value: 0, Usage: "code buffer capacity in bytes (0 = default)"}
}

func maxDataFlag() cli.Flag {
	return &cli.IntFlag{Name: "max-data", Value: 0, Usage: "data area slot count (0 = default)"}
}

func readSource(c *cli.Context) ([]byte, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one source file argument")
	}
	return os.ReadFile(c.Args().Get(0))
}
