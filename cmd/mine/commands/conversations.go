package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solvaholic/phonemine/internal/graph"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations <transcript>",
	Short: "Group a transcript's messages by conversation",
	Long: `Conversations indexes direct messages, group messages, red packets and
addressed stickers/images by the contact or group they belong to.

Examples:
  # Summary of every conversation
  mine conversations chat.jsonl

  # Full timeline of one conversation
  mine conversations chat.jsonl --key contact:123456

  # Write one JSON file per conversation
  mine conversations chat.jsonl --export ./conversations`,
	Args: cobra.ExactArgs(1),
	RunE: runConversations,
}

var (
	conversationKey    string
	conversationExport string
)

func init() {
	rootCmd.AddCommand(conversationsCmd)

	conversationsCmd.Flags().StringVar(&conversationKey, "key", "", "Show one conversation (contact:<number>, contact-name:<name>, group:<id>)")
	conversationsCmd.Flags().StringVar(&conversationExport, "export", "", "Directory to write the conversation index to")
}

// conversationSummary is one line of the conversations listing
type conversationSummary struct {
	Key         string `json:"key"`
	IsGroup     bool   `json:"is_group"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	EventCount  int    `json:"event_count"`
	FirstIndex  int    `json:"first_index"`
	LastIndex   int    `json:"last_index"`
}

func runConversations(cmd *cobra.Command, args []string) error {
	_, result, err := loadAndExtract(args[0])
	if err != nil {
		return err
	}

	ix := graph.BuildFromResult(result)

	if conversationExport != "" {
		if err := graph.SaveConversationIndex(ix, conversationExport); err != nil {
			return fmt.Errorf("failed to export conversations: %w", err)
		}
		log.Info().Str("dir", conversationExport).Int("conversations", len(ix.Order)).Msg("exported conversation index")
	}

	if conversationKey != "" {
		conv := ix.Get(conversationKey)
		if conv == nil {
			return fmt.Errorf("no conversation with key '%s'", conversationKey)
		}
		return OutputJSON(conv)
	}

	summaries := make([]conversationSummary, 0, len(ix.Order))
	for _, conv := range ix.List() {
		summaries = append(summaries, conversationSummary{
			Key:         conv.Key,
			IsGroup:     conv.IsGroup,
			ID:          conv.ID,
			DisplayName: conv.DisplayName,
			EventCount:  len(conv.Events),
			FirstIndex:  conv.FirstIndex,
			LastIndex:   conv.LastIndex,
		})
	}

	if outputFormat == "jsonl" {
		return OutputList(summaries)
	}

	return OutputJSON(map[string]interface{}{
		"conversations": summaries,
		"stats":         ix.Stats(),
	})
}
