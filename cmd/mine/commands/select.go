package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/solvaholic/phonemine/internal/db"
	"github.com/solvaholic/phonemine/internal/extract"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Query stored records",
	Long: `Select queries the local database for records saved by 'mine save'.

Examples:
  # Everything stored for one transcript
  mine select --transcript /chats/chat.jsonl

  # Direct and group messages, as a table
  mine select --kind messages --format table

  # Records found in one chat message of a run
  mine select --run <run-id> --source-index 12

Output formats:
  - json: Stored records with their payloads (default, for tools)
  - jsonl: One record per line (for streaming/piping)
  - yaml: Same as json, as YAML
  - table: Human-readable table`,
	RunE: runSelect,
}

var (
	selectTranscript  string
	selectRunID       string
	selectKinds       []string
	selectSourceIndex int
	selectLimit       int
	selectOffset      int
)

// kindAliases expand convenience names accepted by --kind
var kindAliases = map[string][]string{
	"messages": {string(extract.KindDirectMessage), string(extract.KindGroupMessage)},
	"timeline": {
		string(extract.KindDirectMessage),
		string(extract.KindGroupMessage),
		string(extract.KindSticker),
		string(extract.KindRedPacket),
		string(extract.KindImage),
	},
	"inventory": {string(extract.KindInventoryItem), string(extract.KindItemUsage)},
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&selectTranscript, "transcript", "", "Filter by transcript path")
	selectCmd.Flags().StringVar(&selectRunID, "run", "", "Filter by run ID")
	selectCmd.Flags().StringSliceVar(&selectKinds, "kind", nil, "Filter by record kind (can be repeated; messages, timeline and inventory expand)")
	selectCmd.Flags().IntVar(&selectSourceIndex, "source-index", -1, "Filter by source chat message index")
	selectCmd.Flags().IntVar(&selectLimit, "limit", 100, "Maximum number of results")
	selectCmd.Flags().IntVar(&selectOffset, "offset", 0, "Offset for pagination")
}

func runSelect(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	opts := db.SelectEventsOptions{
		Kinds:  expandKinds(selectKinds),
		Limit:  selectLimit,
		Offset: selectOffset,
	}
	if selectTranscript != "" {
		opts.Transcript = &selectTranscript
	}
	if selectRunID != "" {
		opts.RunID = &selectRunID
	}
	if selectSourceIndex >= 0 {
		opts.SourceIndex = &selectSourceIndex
	}

	events, err := database.SelectEvents(opts)
	if err != nil {
		return fmt.Errorf("failed to select events: %w", err)
	}

	if outputFormat == "table" {
		return outputEventTable(events)
	}
	return OutputList(events)
}

// expandKinds resolves aliases and drops duplicates, keeping first-seen order
func expandKinds(kinds []string) []string {
	var expanded []string
	for _, kind := range kinds {
		kind = strings.TrimSpace(kind)
		if kind == "" {
			continue
		}
		if alias, ok := kindAliases[kind]; ok {
			expanded = append(expanded, alias...)
			continue
		}
		expanded = append(expanded, kind)
	}
	return lo.Uniq(expanded)
}

func outputEventTable(events []*db.Event) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "SOURCE\tPOS\tKIND\tSUMMARY\n")
	fmt.Fprintf(w, "------\t---\t----\t-------\n")

	for _, ev := range events {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n",
			ev.SourceIndex,
			ev.Position,
			ev.Kind,
			truncate(eventSummary(ev), 60),
		)
	}

	return nil
}

// summaryFields are payload fields worth showing in a table, most telling first
var summaryFields = []string{"content", "name", "item_name", "filename", "image_path", "amount"}

// eventSummary picks a short description out of a stored payload
func eventSummary(ev *db.Event) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return ""
	}

	var who string
	for _, key := range []string{"counterpart_name", "sender", "counterpart"} {
		if v, ok := payload[key].(string); ok && v != "" {
			who = v + ": "
			break
		}
	}

	for _, key := range summaryFields {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return who + v
			}
		case float64:
			return fmt.Sprintf("%s%s %d", who, key, int(v))
		}
	}
	return strings.TrimSuffix(who, ": ")
}

// truncate shortens s to at most max runes for display
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return s
}
