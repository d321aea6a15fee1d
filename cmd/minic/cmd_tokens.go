package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/minic-lang/minic/internal/lang"
)

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "dump the lexer's token stream",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			src, err := readSource(c)
			if err != nil {
				return err
			}
			s := lang.NewScanner(src)
			for {
				tok, err := s.Next()
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%v\n", tok.Pos, tok)
				if tok.Kind == lang.EOF {
					return nil
				}
			}
		},
	}
}
