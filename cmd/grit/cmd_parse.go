package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/grit/format"
)

type parseResult struct {
	out bytes.Buffer
	err error
}

func newParseCmd() *cobra.Command {
	var flags languageFlags
	var outputFormat string
	var jobs int

	cmd := &cobra.Command{
		Use:          "parse <file>...",
		Short:        "Parse files and print their syntax trees",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := format.New(outputFormat, nil); err != nil {
				return err
			}
			p, err := flags.parser()
			if err != nil {
				return err
			}
			return runParse(cmd.Context(), p, args, outputFormat, jobs)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Names(), ", ")+")")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files parsed concurrently")

	return cmd
}

func runParse(ctx context.Context, p sourceParser, files []string, outputFormat string, jobs int) error {
	log := commonlog.GetLogger("grit.cli")
	results := make([]parseResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, jobs))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := &results[i]
			node, err := p.ParseFile(file)
			if err != nil {
				r.err = err
				return nil
			}
			enc, err := format.New(outputFormat, &r.out)
			if err != nil {
				return err
			}
			if err := enc.Encode(node); err != nil {
				return fmt.Errorf("encode %s: %w", file, err)
			}
			log.Debugf("parsed %s", file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintln(os.Stderr, r.err)
			continue
		}
		if len(files) > 1 {
			fmt.Printf("==> %s <==\n", files[i])
		}
		os.Stdout.Write(r.out.Bytes())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to parse", failed, len(files))
	}
	return nil
}
