package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/config"
	"github.com/dhamidi/grit/diag"
	"github.com/dhamidi/grit/ebnf"
	"github.com/dhamidi/grit/internal/minic"
	"github.com/dhamidi/grit/lexer"
	"github.com/dhamidi/grit/parser"
)

// sourceParser is implemented by parser.Lexerless and parser.Lexerful.
type sourceParser interface {
	ParseReader(uri string, r io.Reader) (*ast.Node, error)
	ParseFile(path string) (*ast.Node, error)
}

// languageFlags selects the language of the input: the built-in MiniC
// language or a grammar loaded from an EBNF file.
type languageFlags struct {
	lang     string
	ebnf     string
	start    string
	comments string
	charset  string
	color    bool
}

func (f *languageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lang, "lang", "", "built-in language (minic)")
	cmd.Flags().StringVar(&f.ebnf, "ebnf", "", "EBNF grammar file")
	cmd.Flags().StringVar(&f.start, "start", "", "start production of the EBNF grammar")
	cmd.Flags().StringVar(&f.comments, "comments", "", "regexp matching comments between EBNF tokens")
	cmd.Flags().StringVar(&f.charset, "charset", "", "charset of the input files (default UTF-8)")
	cmd.Flags().BoolVar(&f.color, "color", !color.NoColor, "colorize diagnostics")
	cmd.MarkFlagsMutuallyExclusive("lang", "ebnf")
}

func (f *languageFlags) parser() (sourceParser, error) {
	opts := []parser.Option{
		parser.WithFormatter(&diag.Formatter{Color: f.color}),
	}

	switch {
	case f.ebnf != "":
		if f.start == "" {
			return nil, errors.New("--ebnf requires --start")
		}
		var loadOpts []ebnf.Option
		if f.comments != "" {
			loadOpts = append(loadOpts, ebnf.WithComments(f.comments))
		}
		g, err := ebnf.LoadFile(f.ebnf, f.start, loadOpts...)
		if err != nil {
			return nil, err
		}
		if f.charset != "" {
			opts = append(opts, parser.WithCharset(f.charset))
		}
		return parser.NewLexerless(g, opts...)
	case f.lang == "minic":
		if f.charset != "" {
			lx, err := minic.NewLexer(lexer.WithCharset(f.charset))
			if err != nil {
				return nil, err
			}
			g, err := minic.Grammar()
			if err != nil {
				return nil, err
			}
			return parser.NewLexerful(g, lx, opts...)
		}
		return minic.NewParser(opts...)
	case f.lang != "":
		return nil, fmt.Errorf("unknown language %q", f.lang)
	}
	return nil, errors.New("one of --lang or --ebnf is required")
}

// lexerFlags selects a lexer: the MiniC lexer or one built from a TOML or
// YAML configuration.
type lexerFlags struct {
	lang   string
	config string
}

func (f *lexerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lang, "lang", "", "built-in language (minic)")
	cmd.Flags().StringVar(&f.config, "lexer", "", "lexer configuration file (.toml, .yaml)")
	cmd.MarkFlagsMutuallyExclusive("lang", "lexer")
}

func (f *lexerFlags) lexer() (*lexer.Lexer, error) {
	switch {
	case f.config != "":
		cfg, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		lx, _, err := cfg.Build()
		return lx, err
	case f.lang == "minic":
		return minic.NewLexer()
	case f.lang != "":
		return nil, fmt.Errorf("unknown language %q", f.lang)
	}
	return nil, errors.New("one of --lang or --lexer is required")
}
