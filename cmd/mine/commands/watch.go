package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solvaholic/phonemine/internal/db"
)

var watchCmd = &cobra.Command{
	Use:   "watch <transcript>",
	Short: "Re-extract a transcript whenever it changes",
	Long: `Watch extracts a transcript once, then again each time the file is
written. Bursts of writes are coalesced (watch.debounce in the config file,
300ms by default). Each extraction prints a summary line.

Examples:
  # Follow a live chat
  mine watch chat.jsonl --format jsonl

  # Keep the database in sync with the chat
  mine watch chat.jsonl --save`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchSave bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchSave, "save", false, "Store each extraction in the database")
}

// watchSummary reports one extraction of a watched transcript
type watchSummary struct {
	Transcript   string         `json:"transcript"`
	RunID        string         `json:"run_id,omitempty"`
	MessageCount int            `json:"message_count"`
	Counts       map[string]int `json:"counts"`
	ExtractedAt  time.Time      `json:"extracted_at"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("transcript not found: %w", err)
	}

	var database *db.DB
	if watchSave {
		database, err = openDB()
		if err != nil {
			return err
		}
		defer database.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchTranscript(ctx, path, settings.WatchDebounce, func() {
		if err := extractOnce(database, path); err != nil {
			log.Error().Err(err).Str("transcript", path).Msg("extraction failed")
		}
	})
}

// watchTranscript calls onChange once at start and again after each burst of
// changes to path, until ctx is done. The parent directory is watched so
// editors that replace the file by rename are still followed.
func watchTranscript(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Info().Str("transcript", path).Dur("debounce", debounce).Msg("watching transcript")

	onChange()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopped watching")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !(event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)) {
				continue
			}
			log.Debug().Str("op", event.Op.String()).Msg("transcript changed")
			timer.Reset(debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// extractOnce extracts path, stores it when database is set and prints a summary
func extractOnce(database *db.DB, path string) error {
	transcript, result, err := loadAndExtract(path)
	if err != nil {
		return err
	}

	summary := watchSummary{
		Transcript:   path,
		MessageCount: len(transcript.Messages),
		Counts:       result.Counts(),
		ExtractedAt:  time.Now().UTC(),
	}

	if database != nil {
		saved, err := storeResult(database, transcript, result)
		if err != nil {
			return err
		}
		summary.RunID = saved.RunID
	}

	return OutputJSON(summary)
}
