package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/models"
	"github.com/benoctopus/titan/internal/routine"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var routineJSON bool

var routineCmd = &cobra.Command{
	Use:   "routine",
	Short: "Show the weekly routine",
	Long: `Show the planned routine for each day of the week.

The routine is seeded on first run from the built-in plan, or from the file
named by routine_file in the config (TITAN_ROUTINE_FILE).`,
	Args: cobra.NoArgs,
	RunE: runRoutine,
}

func init() {
	rootCmd.AddCommand(routineCmd)
	routineCmd.Flags().BoolVar(&routineJSON, "json", false, "Output in JSON format")
}

func runRoutine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	stored, err := ws.store.GetWeeklyRoutine(ctx)
	if err != nil {
		return eris.Wrap(err, "failed to load weekly routine")
	}
	week := routine.Week(stored)

	if routineJSON {
		data, err := json.MarshalIndent(week, "", "  ")
		if err != nil {
			return eris.Wrap(err, "failed to marshal routine to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := display.New(cmd.OutOrStdout())
	current := today()
	for _, day := range week {
		marker := " "
		if day.DayOfWeek == current {
			marker = "→"
		}

		label := fmt.Sprintf("%s %-9s %s", marker, models.DayName(day.DayOfWeek), day.RoutineName)
		if routine.IsRestDay(day) {
			out.Println(out.Faint(label))
			continue
		}
		if day.DayOfWeek == current {
			label = out.Bold(label)
		}
		out.Println(label)
		out.Println(out.Faint("            " + strings.Join(day.Exercises, ", ")))
	}
	return nil
}
