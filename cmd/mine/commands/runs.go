package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/solvaholic/phonemine/internal/db"
	"github.com/solvaholic/phonemine/internal/utils"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored extraction runs",
	Long: `Runs lists the extraction runs stored in the local database, newest first.

Examples:
  # All runs
  mine runs

  # Runs saved in the last week, as a table
  mine runs --since 7d --format table`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

var runsSince string

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVar(&runsSince, "since", "", "Only runs saved since a date (YYYY-MM-DD or relative like 7d)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	var since *time.Time
	if runsSince != "" {
		parsed, err := utils.ParseSinceDate(runsSince)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(since)
	if err != nil {
		return err
	}

	if outputFormat == "table" {
		return outputRunTable(runs)
	}
	return OutputList(runs)
}

func outputRunTable(runs []*db.Run) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "EXTRACTED\tMESSAGES\tRUN\tTRANSCRIPT\n")
	fmt.Fprintf(w, "---------\t--------\t---\t----------\n")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			run.ExtractedAt.Local().Format("2006-01-02 15:04"),
			run.MessageCount,
			run.ID,
			run.Transcript,
		)
	}

	return nil
}
