package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var startDay int

var startCmd = &cobra.Command{
	Use:   "start [name]",
	Short: "Start or resume today's workout",
	Long: `Start a workout for today, or resume the one already in progress.

The workout is named after the day's routine unless a name is given, and is
tagged with the weekday so the same exercises are suggested next week.

The plan lists the weekly routine's exercises first, in routine order. Other
exercises recalled from past sessions on the same weekday follow; an exercise
in both lists appears once, in its routine position. The day_policy setting
chooses how past sessions are recalled.

Examples:
  titan start                  # Today's routine
  titan start "Upper Body"     # Custom name
  titan start --day 0          # Treat today as Monday`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().IntVar(&startDay, "day", -1, "Weekday to train (0=Monday ... 6=Sunday), defaults to today")
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	day := startDay
	if day < 0 {
		day = today()
	}
	if !models.ValidDay(day) {
		return eris.Errorf("invalid --day %d (must be 0 for Monday through 6 for Sunday)", day)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	workout, resumed, err := ws.startOrResume(ctx, day, name)
	if err != nil {
		return eris.Wrap(err, "failed to start workout")
	}

	out := display.New(cmd.OutOrStdout())
	if resumed {
		out.Infof("Resumed workout #%d: %s", workout.ID, out.Bold(workout.Name))
	} else {
		out.Successf("Started workout #%d: %s (%s)", workout.ID, out.Bold(workout.Name), models.DayName(day))
	}

	return printDayPlan(ctx, ws, cmd.OutOrStdout(), workoutDay(workout), workout.ID)
}

// printDayPlan lists the exercises expected on day with what was lifted last time
func printDayPlan(ctx context.Context, ws *workspace, w io.Writer, day int, currentWorkoutID int) error {
	out := display.New(w)

	names, planned, err := dayExerciseNames(ctx, ws, day)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		out.Println(out.Faint("No exercises planned. Log one with: titan log <exercise> <weight> <reps>"))
		return nil
	}

	out.Println()
	out.Heading(models.DayName(day))
	for _, name := range names {
		last, err := ws.store.GetLastSetForExercise(ctx, name, currentWorkoutID)
		if err != nil {
			return eris.Wrapf(err, "failed to load previous set for %s", name)
		}

		previous := out.Faint("new")
		if last != nil {
			previous = out.ErrorText("Previous: " + display.FormatSet(last.Weight, last.Reps))
		}
		out.Printf("  %-28s %s\n", display.Truncate(name, 28), previous)
	}
	if recalled := len(names) - planned; recalled > 0 {
		out.Println(out.Faint(fmt.Sprintf("  %d recalled from past %ss (%s)",
			recalled, models.DayName(day), ws.store.DayPolicy())))
	}
	return nil
}

// dayExerciseNames merges the planned routine with exercises recalled from
// past sessions on the same weekday, routine order first. planned counts the
// leading names that come from the routine.
func dayExerciseNames(ctx context.Context, ws *workspace, day int) (names []string, planned int, err error) {
	seen := make(map[string]bool)
	add := func(name string) {
		key := models.NormalizeName(name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}

	plan, err := ws.store.GetRoutineForDay(ctx, day)
	if err != nil {
		return nil, 0, eris.Wrap(err, "failed to load routine")
	}
	if plan != nil {
		for _, name := range plan.Exercises {
			add(name)
		}
	}
	planned = len(names)

	recalled, err := ws.store.GetExercisesForDay(ctx, day, 0)
	if err != nil {
		return nil, 0, eris.Wrap(err, "failed to recall exercises for day")
	}
	for _, exercise := range recalled {
		add(exercise.Name)
	}

	return names, planned, nil
}
