package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solvaholic/phonemine/internal/config"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database information",
	Long:  `Display statistics about the local database including size, record counts, and the range of stored runs.`,
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := database.Stats()
	if err != nil {
		return err
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath, _ = config.DefaultPath()
	}

	output := map[string]interface{}{
		"status":        "success",
		"database":      database.Path(),
		"config":        cfgPath,
		"database_size": formatBytes(stats.DatabaseSize),
		"counts": map[string]int64{
			"runs":     stats.RunCount,
			"contacts": stats.ContactCount,
			"groups":   stats.GroupCount,
			"events":   stats.EventCount,
		},
	}

	if stats.EarliestRun != nil && stats.LatestRun != nil {
		output["run_range"] = map[string]string{
			"earliest": stats.EarliestRun.Format(time.RFC3339),
			"latest":   stats.LatestRun.Format(time.RFC3339),
		}
	}

	return OutputJSON(output)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
