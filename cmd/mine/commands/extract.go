package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solvaholic/phonemine/internal/extract"
	"github.com/solvaholic/phonemine/internal/normalize"
)

var extractCmd = &cobra.Command{
	Use:   "extract <transcript>",
	Short: "Extract phone records from a transcript",
	Long: `Extract reads a chat transcript and prints the records found in its
message bodies. Nothing is stored.

Examples:
  # Everything, as one JSON document
  mine extract chat.jsonl

  # Only the message timeline, one event per line
  mine extract chat.jsonl --kind messages --format jsonl

  # Shop products as YAML
  mine extract chat.jsonl --kind products --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var contactsCmd = &cobra.Command{
	Use:   "contacts <transcript>",
	Short: "List contacts found in a transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return extractKind(args[0], "contacts")
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups <transcript>",
	Short: "List group chats found in a transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return extractKind(args[0], "groups")
	},
}

var extractKindFlag string

// extractKinds are the values accepted by --kind
var extractKinds = []string{"all", "contacts", "messages", "groups", "products", "tasks", "inventory", "points"}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(groupsCmd)

	extractCmd.Flags().StringVar(&extractKindFlag, "kind", "all", "Records to print: all, contacts, messages, groups, products, tasks, inventory, points")
}

func runExtract(cmd *cobra.Command, args []string) error {
	return extractKind(args[0], extractKindFlag)
}

func extractKind(path, kind string) error {
	if !validExtractKind(kind) {
		return fmt.Errorf("unknown kind: %s", kind)
	}

	_, result, err := loadAndExtract(path)
	if err != nil {
		return err
	}

	return outputResult(result, kind)
}

func validExtractKind(kind string) bool {
	for _, k := range extractKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// loadAndExtract reads a transcript and runs every extractor over it. An
// empty transcript is not an error: it yields an empty result.
func loadAndExtract(path string) (*normalize.Transcript, *extract.Result, error) {
	transcript, err := normalize.LoadTranscript(path)
	if errors.Is(err, normalize.ErrEmptyTranscript) {
		log.Warn().Str("transcript", path).Msg("transcript has no messages")
		transcript = &normalize.Transcript{Source: path}
	} else if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("transcript", path).
		Str("format", transcript.Format).
		Int("messages", len(transcript.Messages)).
		Msg("loaded transcript")

	result := newSession().Extract(transcript.Messages)
	return transcript, result, nil
}

func outputResult(result *extract.Result, kind string) error {
	switch kind {
	case "contacts":
		return OutputList(result.Contacts)
	case "messages":
		return OutputList(result.Timeline.Entries())
	case "groups":
		return OutputList(result.Groups)
	case "products":
		return OutputList(result.Products)
	case "tasks":
		return OutputJSON(result.Tasks)
	case "inventory":
		return OutputJSON(result.Inventory)
	case "points":
		return OutputJSON(result.Points)
	default:
		return OutputJSON(result)
	}
}
