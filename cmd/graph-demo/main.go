package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/solvaholic/phonemine/internal/extract"
	"github.com/solvaholic/phonemine/internal/graph"
	"github.com/solvaholic/phonemine/internal/normalize"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: graph-demo <transcript>\n")
		os.Exit(2)
	}

	// Load the transcript
	transcript, err := normalize.LoadTranscript(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transcript: %v\n", err)
		os.Exit(1)
	}

	result := extract.NewSession().Extract(transcript.Messages)
	ix := graph.BuildFromResult(result)

	fmt.Printf("Conversation Index Summary\n")
	fmt.Printf("==========================\n\n")

	// Display stats
	stats := ix.Stats()
	fmt.Printf("Conversations: %v\n", stats["conversation_count"])
	fmt.Printf("Contacts: %v\n", stats["contact_conversations"])
	fmt.Printf("Groups: %v\n", stats["group_conversations"])
	fmt.Printf("Events: %v\n", stats["total_events"])
	fmt.Printf("Unaddressed: %v\n", stats["unaddressed_events"])
	fmt.Printf("Average Events per Conversation: %.2f\n", stats["average_events_per_conv"])
	fmt.Printf("Updated: %v\n\n", stats["updated_at"])

	fmt.Printf("Conversations:\n")
	fmt.Printf("--------------\n")
	for _, conv := range ix.List() {
		fmt.Printf("\n%s (%s)\n", conv.DisplayName, conv.Key)
		fmt.Printf("  Events: %d\n", len(conv.Events))
		fmt.Printf("  Messages: %d to %d\n", conv.FirstIndex, conv.LastIndex)

		// Display the timeline
		fmt.Printf("  Timeline:\n")
		for _, ev := range conv.Events {
			fmt.Printf("    - %s @ %d:%d\n", ev.Kind(), ev.SourceIndex(), ev.Position())
		}
	}

	if len(ix.Order) == 0 {
		fmt.Printf("No conversations found.\n")
	}

	// Output full index as JSON
	fmt.Printf("\n\nFull Index Data:\n")
	fmt.Printf("================\n")
	output, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(output))
}
