package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"logs", "list", "ls"},
	Short:   "List recent workouts",
	Long: `Display recent workouts, newest first, with their set counts.

Examples:
  titan history                # Last 10 workouts
  titan history --limit 30
  titan history --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of workouts to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	history, err := ws.store.GetWorkoutHistory(ctx, historyLimit)
	if err != nil {
		return eris.Wrap(err, "failed to get workout history")
	}

	if historyJSON {
		data, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return eris.Wrap(err, "failed to marshal workouts to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := display.New(cmd.OutOrStdout())
	if len(history) == 0 {
		out.Println("No workouts found.")
		out.Println("Start one with: titan start")
		return nil
	}

	// Print table header
	out.Printf("%-6s %-16s %-24s %-6s %-14s\n", "ID", "DATE", "NAME", "SETS", "STATUS")
	out.Println(strings.Repeat("-", 70))

	now := clock()
	for _, workout := range history {
		out.Printf("%-6d %-16s %-24s %-6d %-14s\n",
			workout.ID,
			display.FormatDate(workout.Date, now),
			display.Truncate(workout.Name, 24),
			workout.TotalSets,
			workoutStatus(&workout.Workout),
		)
	}

	return nil
}

// workoutStatus is "in progress" or how long a finished workout took
func workoutStatus(workout *models.Workout) string {
	if workout.CompletedAt == nil {
		return "in progress"
	}
	return display.FormatDuration(workout.CompletedAt.Sub(workout.StartedAt))
}
