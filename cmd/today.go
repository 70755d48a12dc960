package cmd

import (
	"fmt"

	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var todayDay int

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's plan and progress",
	Long: `Show the exercises planned for today with the previous session's top
set, and the workout in progress if there is one.

The weekly routine's exercises come first and take precedence. Exercises
recalled from past sessions on the same weekday are listed after them, with
a note naming the day_policy used to recall them.

Examples:
  titan today
  titan today --day 4    # Friday's plan`,
	Args: cobra.NoArgs,
	RunE: runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().IntVar(&todayDay, "day", -1, "Weekday to show (0=Monday ... 6=Sunday), defaults to today")
}

func runToday(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	day := todayDay
	if day < 0 {
		day = today()
	}
	if !models.ValidDay(day) {
		return eris.Errorf("invalid --day %d (must be 0 for Monday through 6 for Sunday)", day)
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	out := display.New(cmd.OutOrStdout())

	active, err := ws.store.GetActiveWorkout(ctx)
	if err != nil {
		return err
	}

	var currentID int
	if active != nil {
		currentID = active.ID
		sets, err := ws.store.GetSetsForWorkout(ctx, active.ID)
		if err != nil {
			return err
		}
		out.Infof("In progress: #%d %s · %d sets · started %s",
			active.ID, out.Bold(active.Name), len(sets), display.FormatTimeAgo(active.StartedAt, clock()))
	} else {
		plan, err := ws.store.GetRoutineForDay(ctx, day)
		if err != nil {
			return err
		}
		if plan == nil {
			out.Println(out.Faint(fmt.Sprintf("%s is a rest day.", models.DayName(day))))
		} else {
			out.Println(out.Faint(fmt.Sprintf("%s: %s", models.DayName(day), plan.RoutineName)))
		}
	}

	return printDayPlan(ctx, ws, cmd.OutOrStdout(), day, currentID)
}
