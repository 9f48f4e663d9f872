package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/locsort/internal/config"
	"github.com/JonMunkholm/locsort/internal/logging"
)

// cli carries what every subcommand needs. The streams and environment
// lookup are injected so commands can run against buffers in tests.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	lookup config.LookupFunc

	cfg     *config.Config
	verbose bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer, lookup config.LookupFunc) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut, lookup: lookup}

	root := &cobra.Command{
		Use:   "locsort",
		Short: "Sort tables by Library of Congress call number",
		Long: `locsort orders the rows of a CSV, TSV or Excel export by a call number
column so that the result follows shelf order.

Examples:
  locsort sort items.csv                     # writes items-sorted.csv
  locsort sort items.xlsx -o shelf.csv --column call_number
  locsort key "QA 76.73 .C15 S73 1996"       # show how a call number is keyed
  locsort history -n 10                      # recent runs`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newSortCmd(c),
		newKeyCmd(c),
		newHistoryCmd(c),
	)
	return root
}

// setup loads configuration and logging. The CLI logs warnings only unless
// LOG_LEVEL is set or --verbose is given.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFrom(c.lookup)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := "warn"
	if _, ok := c.lookup("LOG_LEVEL"); ok {
		level = cfg.Logging.Level
	}
	if c.verbose {
		level = "debug"
	}
	logging.Setup(c.errOut, level, cfg.Logging.Format)
	return nil
}
