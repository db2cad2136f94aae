package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/grit/format"
)

func newTokenizeCmd() *cobra.Command {
	var flags lexerFlags

	cmd := &cobra.Command{
		Use:          "tokenize <file>",
		Short:        "Print the tokens of a file together with their trivia",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lx, err := flags.lexer()
			if err != nil {
				return err
			}
			tokens, err := lx.LexFile(args[0])
			if err != nil {
				return err
			}
			if err := format.NewTokenEncoder(os.Stdout).Encode(tokens); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
