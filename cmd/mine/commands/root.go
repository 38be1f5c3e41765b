package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/solvaholic/phonemine/internal/config"
	"github.com/solvaholic/phonemine/internal/db"
	"github.com/solvaholic/phonemine/internal/extract"
)

var (
	// Global flags
	outputFormat string
	dbPath       string
	logLevel     string
	configPath   string

	// Resolved from the config file in PersistentPreRunE
	settings config.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mine",
	Short: "Extract phone-app records from roleplay chat transcripts",
	Long: `phonemine (mine) reads chat transcripts that embed a simulated QQ phone
as bracket tokens, like [qq号|name|number|favorability] or
[我方消息|name|number|content|time], and turns them into typed records:
contacts, direct and group messages, stickers, red packets, groups, shop
products, tasks, backpack items and points.

The tool has two main modes:
  - extract: Read a transcript and print records without storing anything
  - save/select: Store extraction runs in a local SQLite database and query them

Transcripts may be SillyTavern JSONL chats or JSON arrays of messages.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, jsonl, yaml; table for select and runs)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.phonemine/phonemine.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, else warn)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.phonemine/config)")
}

// setup loads the config file and configures logging. Flags override config.
func setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	settings = cfg.Settings()

	if logLevel == "" {
		logLevel = settings.LogLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", logLevel, err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().
		Logger()

	switch outputFormat {
	case "json", "jsonl", "yaml", "table":
	default:
		return fmt.Errorf("unknown format: %s", outputFormat)
	}

	return nil
}

// newSession creates an extraction session wired to the CLI logger and config
func newSession() *extract.Session {
	return extract.NewSession(
		extract.WithLogger(log.Logger),
		extract.WithStickerBaseURL(settings.StickerBaseURL),
	)
}

// resolveDBPath picks the database path from --db, then config, then the default
func resolveDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if settings.DBPath != "" {
		return settings.DBPath
	}
	return db.DefaultDBPath()
}

// openDB opens the resolved database
func openDB() (*db.DB, error) {
	database, err := db.Open(resolveDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// OutputJSON writes data to stdout in the selected format. jsonl is compact,
// yaml keeps the JSON field names and order, anything else is pretty JSON.
func OutputJSON(data interface{}) error {
	var output []byte
	var err error

	switch outputFormat {
	case "jsonl":
		output, err = json.Marshal(data)
	case "yaml":
		output, err = toYAML(data)
	default:
		output, err = json.MarshalIndent(data, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(strings.TrimRight(string(output), "\n"))
	return nil
}

// OutputList writes one item per line for jsonl and the whole list otherwise
func OutputList[T any](items []T) error {
	if outputFormat != "jsonl" {
		return OutputJSON(items)
	}
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}

// toYAML converts through JSON so the json tags and custom marshalers apply.
// JSON is valid YAML; decoding it into a node keeps key order.
func toYAML(data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(jsonData, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)

	return yaml.Marshal(&node)
}

// blockStyle drops the flow and quoting styles a JSON document parses with
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// OutputError writes error message to stderr
func OutputError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
