package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored extraction runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if st == nil {
			return errors.New("no store configured: pass --db or set store.path")
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTARTED\tSOURCE\tMESSAGES\tPHRASES\tFAILURES")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Format(time.RFC3339), r.Source,
				r.Stats.Messages, r.Stats.Phrases, r.Stats.Failures)
		}
		return tw.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the results of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if st == nil {
			return errors.New("no store configured: pass --db or set store.path")
		}
		defer st.Close()

		run, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		results, err := st.GetResults(cmd.Context(), run.ID)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "run %s (%s)\n", run.ID, run.Source)
		fmt.Fprintf(w, "started %s", run.StartedAt.Format(time.RFC3339))
		if !run.FinishedAt.IsZero() {
			fmt.Fprintf(w, ", took %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
		}
		fmt.Fprintf(w, "\nmessages %d, phrases %d, failures %d\n\n", run.Stats.Messages, run.Stats.Phrases, run.Stats.Failures)
		if run.Config != "" && verbose {
			fmt.Fprintf(w, "config:\n%s\n", indent(run.Config))
		}
		return printResults(w, results)
	},
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to list (0 for all)")
	runsShowCmd.Flags().BoolVar(&extractJSON, "json", false, "print results as JSON lines")
	runsShowCmd.Flags().BoolVar(&extractRecords, "records", false, "include per-candidate scores")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return "  " + strings.Join(lines, "\n  ")
}
