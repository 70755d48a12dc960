package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var previousJSON bool

var previousCmd = &cobra.Command{
	Use:     "previous <exercise>",
	Aliases: []string{"prev", "last"},
	Short:   "Show the last session's sets for an exercise",
	Long: `Show every set of the most recent session that included the exercise,
not counting the workout in progress, with a suggested next weight.

Examples:
  titan previous "Bench Press"
  titan prev squat --json`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeExercises,
	RunE:              runPrevious,
}

func init() {
	rootCmd.AddCommand(previousCmd)
	previousCmd.Flags().BoolVar(&previousJSON, "json", false, "Output in JSON format")
}

// previousSession is the JSON shape of the previous command
type previousSession struct {
	Exercise  string                `json:"exercise"`
	Workout   *models.Workout       `json:"workout,omitempty"`
	Sets      []*models.ExerciseSet `json:"sets"`
	Suggested *models.SetDraft      `json:"suggested,omitempty"`
}

func runPrevious(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	var excludeID int
	active, err := ws.store.GetActiveWorkout(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		excludeID = active.ID
	}

	sets, err := ws.store.GetPreviousSetsForExercise(ctx, name, excludeID)
	if err != nil {
		return eris.Wrapf(err, "failed to load previous sets for %s", name)
	}

	result := previousSession{Exercise: name, Sets: sets}
	if len(sets) > 0 {
		if result.Workout, err = ws.store.GetWorkout(ctx, sets[0].WorkoutID); err != nil {
			return err
		}
		result.Exercise = sets[0].ExerciseName
		result.Suggested = suggestProgression(sets, ws.cfg.WeightStep)
	}

	if previousJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "failed to marshal previous sets to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := display.New(cmd.OutOrStdout())
	if len(sets) == 0 {
		out.Infof("No previous sets for %s", out.Bold(name))
		return nil
	}

	out.Heading(result.Exercise)
	out.Println(out.Faint(fmt.Sprintf("%s · %s", display.FormatDate(result.Workout.Date, clock()), result.Workout.Name)))
	for _, set := range sets {
		out.Printf("  %d. %s\n", set.SetNumber, display.FormatSet(set.Weight, set.Reps))
	}
	out.Println()
	out.Printf("Try: %s\n", out.SuccessText(display.FormatSet(result.Suggested.Weight, result.Suggested.Reps)))
	return nil
}

// suggestProgression proposes the next top set: the heaviest previous set
// with the weight raised by step
func suggestProgression(sets []*models.ExerciseSet, step float64) *models.SetDraft {
	if len(sets) == 0 {
		return nil
	}

	top := sets[0]
	for _, set := range sets[1:] {
		if set.Weight > top.Weight || (set.Weight == top.Weight && set.Reps > top.Reps) {
			top = set
		}
	}

	return &models.SetDraft{Weight: top.Weight + step, Reps: top.Reps}
}
