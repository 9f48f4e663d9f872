package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/locsort/internal/core"
	"github.com/JonMunkholm/locsort/internal/history"
)

type sortOptions struct {
	output    string
	column    string
	sheet     string
	noHistory bool
}

func newSortCmd(c *cli) *cobra.Command {
	var opts sortOptions

	cmd := &cobra.Command{
		Use:   "sort <input>",
		Short: "Sort a table by a call number column",
		Long: `Sort the rows of a CSV, TSV or Excel file by a call number column.

The header row stays first. Rows with equal keys keep their input order.
The output format follows the output file's extension; when no output is
given the result is written next to the input as <name>-sorted.csv.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSort(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (.csv, .tsv or .xlsx)")
	cmd.Flags().StringVarP(&opts.column, "column", "c", "", "Call number column (default from SORT_DEFAULT_COLUMN)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from an Excel input (default: first)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run")
	return cmd
}

func (c *cli) runSort(ctx context.Context, input string, opts sortOptions) error {
	output := opts.output
	if output == "" {
		output = defaultOutputPath(input)
	}

	var store history.Store
	if !opts.noHistory {
		s, err := history.Open(ctx, c.cfg.History)
		if err != nil {
			slog.Warn("history unavailable, run will not be recorded", "error", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	service := core.NewService(store, c.cfg)
	res, err := service.SortFile(ctx, input, output, opts.column, opts.sheet)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "File sorted and saved to: %s\n", output)
	fmt.Fprintf(c.out, "Column %q: %d rows, %d parsed, %d fallback, %d short\n",
		res.Column, res.Stats.Rows, res.Stats.Parsed, res.Stats.Fallback, res.Stats.ShortRows)
	return nil
}

// defaultOutputPath maps dir/items.xlsx to dir/items-sorted.csv.
func defaultOutputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "-sorted.csv"
}
