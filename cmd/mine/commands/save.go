package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solvaholic/phonemine/internal/db"
	"github.com/solvaholic/phonemine/internal/extract"
	"github.com/solvaholic/phonemine/internal/normalize"
)

var saveCmd = &cobra.Command{
	Use:   "save <transcript>...",
	Short: "Extract transcripts and store the results",
	Long: `Save extracts each transcript and stores the records in the local
database. Saving a transcript again replaces its previous run.

Examples:
  # Store one transcript
  mine save chat.jsonl

  # Store several into a specific database
  mine save --db ./phone.db chats/*.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

// saveSummary reports one stored run
type saveSummary struct {
	RunID        string         `json:"run_id"`
	Transcript   string         `json:"transcript"`
	MessageCount int            `json:"message_count"`
	Counts       map[string]int `json:"counts"`
}

func runSave(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	summaries := make([]saveSummary, 0, len(args))
	for _, path := range args {
		transcript, result, err := loadAndExtract(path)
		if err != nil {
			return err
		}

		summary, err := storeResult(database, transcript, result)
		if err != nil {
			return err
		}
		summaries = append(summaries, *summary)
	}

	if len(summaries) == 1 {
		return OutputJSON(summaries[0])
	}
	return OutputList(summaries)
}

// storeResult saves a result under the transcript's absolute path so the same
// file always replaces its own run
func storeResult(database *db.DB, transcript *normalize.Transcript, result *extract.Result) (*saveSummary, error) {
	if abs, err := filepath.Abs(transcript.Source); err == nil {
		transcript.Source = abs
	}

	run, err := database.SaveResult(transcript, result)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", transcript.Source, err)
	}

	log.Info().
		Str("run_id", run.ID).
		Str("transcript", run.Transcript).
		Int("messages", run.MessageCount).
		Msg("saved run")

	return &saveSummary{
		RunID:        run.ID,
		Transcript:   run.Transcript,
		MessageCount: run.MessageCount,
		Counts:       result.Counts(),
	}, nil
}
