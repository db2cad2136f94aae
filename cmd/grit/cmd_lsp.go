package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/grit/lsp"
)

func newLSPCmd() *cobra.Command {
	var flags languageFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start a Language Server Protocol server publishing parse diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.color = false
			p, err := flags.parser()
			if err != nil {
				return err
			}
			server := lsp.NewServer("grit", version, p)
			return server.RunStdio()
		},
	}

	flags.register(cmd)

	return cmd
}
