package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/locsort/internal/callnumber"
	"github.com/JonMunkholm/locsort/internal/core"
)

func newKeyCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "key [call-number...]",
		Short: "Show the sort key derived from call numbers",
		Long: `Show how call numbers are normalized, parsed and keyed.

Call numbers are taken from the arguments, or one per line from stdin when
no arguments are given. Keys compare byte by byte in shelf order.

Examples:
  locsort key "QA 76.73 .C15 S73 1996" "PS3566 A1"
  cut -d, -f3 items.csv | locsort key --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args
			if len(raw) == 0 {
				lines, err := readLines(c)
				if err != nil {
					return err
				}
				raw = lines
			}

			keys := core.NewService(nil, c.cfg).PreviewKeys(raw)
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(keys)
			}
			return writeKeyTable(c, keys)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON with parsed components")
	return cmd
}

func readLines(c *cli) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return lines, nil
}

func writeKeyTable(c *cli, keys []callnumber.Explanation) error {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RAW\tNORMALIZED\tPARSED\tKEY")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%q\n", k.Raw, k.Normalized, k.Parsed, k.Key)
	}
	return tw.Flush()
}
