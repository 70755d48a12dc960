package cmd

import (
	"context"
	"strconv"

	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/fuzzy"
	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

const (
	// Starting values for an exercise that was never logged
	defaultWeight = 20
	defaultReps   = 8
)

var logCmd = &cobra.Command{
	Use:   "log [exercise] [weight] [reps]",
	Short: "Log a set in today's workout",
	Long: `Log one set of an exercise. Today's workout is started if needed.

Weight and reps default to the matching set of the previous session, so
repeating last week's numbers only needs the exercise name. Without an
exercise name an interactive picker of recent exercises is shown.

Examples:
  titan log "Bench Press" 100 8
  titan log squat              # Repeat last session's numbers
  titan log                    # Pick an exercise`,
	Args:              cobra.MaximumNArgs(3),
	ValidArgsFunction: completeExercises,
	RunE:              runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	workout, _, err := ws.startOrResume(ctx, today(), "")
	if err != nil {
		return eris.Wrap(err, "failed to start workout")
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		if name, err = pickExercise(ctx, ws, cmd); err != nil {
			return err
		}
	}

	previous, err := ws.store.GetPreviousSetsForExercise(ctx, name, workout.ID)
	if err != nil {
		return eris.Wrap(err, "failed to load previous session")
	}
	current, err := setsForExercise(ctx, ws.store, workout.ID, name)
	if err != nil {
		return err
	}

	weight, reps := suggestSet(previous, len(current)+1)
	if len(args) > 1 {
		if weight, err = strconv.ParseFloat(args[1], 64); err != nil {
			return eris.Wrapf(db.ErrValidation, "invalid weight %q", args[1])
		}
	}
	if len(args) > 2 {
		if reps, err = strconv.Atoi(args[2]); err != nil {
			return eris.Wrapf(db.ErrValidation, "invalid reps %q", args[2])
		}
	}

	day := workoutDay(workout)
	id, err := ws.store.LogSet(ctx, workout.ID, name, weight, reps, &day)
	if err != nil {
		return eris.Wrap(err, "failed to log set")
	}

	set, err := ws.store.GetSet(ctx, id)
	if err != nil {
		return err
	}

	out := display.New(cmd.OutOrStdout())
	out.Successf("Set %d · %s %s", set.SetNumber, out.Bold(set.ExerciseName), display.FormatSet(set.Weight, set.Reps))
	if match := previousSetNumber(previous, set.SetNumber); match != nil {
		out.Printf("  %s\n", out.ErrorText("Previous: "+display.FormatSet(match.Weight, match.Reps)))
	}
	return nil
}

// suggestSet proposes the weight and reps for set number n: the same set of
// the previous session, its last set, or the starting defaults
func suggestSet(previous []*models.ExerciseSet, n int) (float64, int) {
	if match := previousSetNumber(previous, n); match != nil {
		return match.Weight, match.Reps
	}
	if len(previous) > 0 {
		last := previous[len(previous)-1]
		return last.Weight, last.Reps
	}
	return defaultWeight, defaultReps
}

func previousSetNumber(previous []*models.ExerciseSet, n int) *models.ExerciseSet {
	for _, set := range previous {
		if set.SetNumber == n {
			return set
		}
	}
	return nil
}

// setsForExercise returns the sets of one exercise within a workout
func setsForExercise(ctx context.Context, store *db.Store, workoutID int, name string) ([]*models.ExerciseSet, error) {
	sets, err := store.GetSetsForWorkout(ctx, workoutID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to load workout sets")
	}

	key := models.NormalizeName(name)
	var matched []*models.ExerciseSet
	for _, set := range sets {
		if models.NormalizeName(set.ExerciseName) == key {
			matched = append(matched, set)
		}
	}
	return matched, nil
}

// pickExercise asks the user for an exercise, offering today's plan and recent exercises
func pickExercise(ctx context.Context, ws *workspace, cmd *cobra.Command) (string, error) {
	names, _, err := dayExerciseNames(ctx, ws, today())
	if err != nil {
		return "", err
	}
	recent, err := ws.store.SearchExercises(ctx, "", 20)
	if err != nil {
		return "", eris.Wrap(err, "failed to load recent exercises")
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[models.NormalizeName(name)] = true
	}
	for _, exercise := range recent {
		if !seen[models.NormalizeName(exercise.Name)] {
			names = append(names, exercise.Name)
		}
	}

	picker := fuzzy.NewPicker(ws.cfg.FuzzyFinder)
	if !interactive() {
		// Scripted input: numbered prompt only
		picker.Finder = fuzzy.FinderNone
	}
	picker.In = cmd.InOrStdin()
	picker.Out = cmd.ErrOrStderr()

	name, err := picker.SelectExercise(ctx, names)
	if err != nil {
		return "", eris.Wrap(err, "no exercise selected")
	}
	return name, nil
}
