package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded export runs",
	Long: `List export runs recorded with record_history enabled, newest first.

Examples:
  tropiiify history
  tropiiify history --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	app, store, err := openStore()
	if err != nil {
		return err
	}
	defer app.Close()

	runs, err := store.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tEXPORTED\tFAILED\tELAPSED\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Exported, r.Failed, r.Elapsed.Round(time.Millisecond), r.OutputRoot)
	}
	return w.Flush()
}
