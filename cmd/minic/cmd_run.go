package main

import (
	"github.com/urfave/cli/v2"

	"github.com/minic-lang/minic/internal/codegen"
	"github.com/minic-lang/minic/internal/exec"
	"github.com/minic-lang/minic/internal/lang"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "compile a program and execute it in-process",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{codeCapacityFlag(), maxDataFlag()},
		Action: func(c *cli.Context) error {
			src, err := readSource(c)
			if err != nil {
				return err
			}
			return compileAndRun(src, c.Int("code-capacity"), c.Int("max-data"))
		},
	}
}

// buildCommand is kept alongside run as a separate subcommand, even though
// this backend has nothing to persist between compile and execute: the
// executor is single-shot, so there is no separate "build artifact" to
// produce beyond running the program.
func buildCommand() *cli.Command {
	cmd := *runCommand()
	cmd.Name = "build"
	cmd.Usage = "alias for run: compile and execute, reporting the in-process result"
	return &cmd
}

func compileAndRun(src []byte, codeCapacity, maxData int) error {
	prog, err := lang.ParseProgram(src)
	if err != nil {
		return err
	}

	if codeCapacity <= 0 {
		codeCapacity = codegen.DefaultCodeCapacity
	}
	if maxData <= 0 {
		maxData = codegen.DefaultMaxData
	}

	mod, err := codegen.Generate(prog, codeCapacity, maxData)
	if err != nil {
		return err
	}

	x := exec.New(mod)
	defer x.Close()
	return x.Run()
}
