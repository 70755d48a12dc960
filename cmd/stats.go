package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/benoctopus/titan/internal/display"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show overall progress",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	stats, err := ws.store.GetStats(ctx)
	if err != nil {
		return eris.Wrap(err, "failed to get stats")
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return eris.Wrap(err, "failed to marshal stats to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := display.New(cmd.OutOrStdout())
	out.Heading("Progress")
	out.Printf("  %-12s %d\n", "Workouts", stats.Workouts)
	out.Printf("  %-12s %d\n", "Sets", stats.Sets)
	out.Printf("  %-12s %d\n", "Exercises", stats.Exercises)
	return nil
}
