package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/locsort/internal/history"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sort runs",
		Long: `List recent sort runs, newest first.

Runs are kept by the configured history backend (HISTORY_BACKEND). The
memory backend keeps nothing between invocations; use sqlite or postgres
to see runs from earlier commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.EqualFold(c.cfg.History.Backend, "memory") {
				fmt.Fprintln(c.errOut, "history backend is memory; set HISTORY_BACKEND=sqlite to keep runs between commands")
			}

			store, err := history.Open(cmd.Context(), c.cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			if limit <= 0 {
				limit = c.cfg.History.ListLimit
			}
			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			return writeRunTable(c, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "lines", "n", 0, "Number of runs to show (default from HISTORY_LIST_LIMIT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeRunTable(c *cli, runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tSOURCE\tCOLUMN\tROWS\tFALLBACK\tDURATION\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			r.Source,
			r.Column,
			r.Rows,
			r.Fallback,
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
			r.Error,
		)
	}
	return tw.Flush()
}
