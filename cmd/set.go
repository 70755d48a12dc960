package cmd

import (
	"strconv"

	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/display"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	setWeight   float64
	setReps     int
	setExercise string
	setNumber   int
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit or delete a logged set",
	Long: `Correct a set after logging it. Set IDs are shown by: titan show --ids

Examples:
  titan set edit 42 --weight 102.5 --reps 6
  titan set edit 42 --exercise "Incline Bench Press"
  titan set delete 42`,
}

var setEditCmd = &cobra.Command{
	Use:   "edit <set-id>",
	Short: "Change the weight, reps, exercise, or number of a set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetEdit,
}

var setDeleteCmd = &cobra.Command{
	Use:     "delete <set-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a set",
	Args:    cobra.ExactArgs(1),
	RunE:    runSetDelete,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.AddCommand(setEditCmd)
	setCmd.AddCommand(setDeleteCmd)

	setEditCmd.Flags().Float64Var(&setWeight, "weight", 0, "New weight")
	setEditCmd.Flags().IntVar(&setReps, "reps", 0, "New rep count")
	setEditCmd.Flags().StringVar(&setExercise, "exercise", "", "Move the set to another exercise")
	setEditCmd.Flags().IntVar(&setNumber, "number", 0, "New set number")
}

func parseID(arg, kind string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, eris.Wrapf(db.ErrValidation, "invalid %s id %q", kind, arg)
	}
	return id, nil
}

func runSetEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0], "set")
	if err != nil {
		return err
	}

	var update db.SetUpdate
	flags := cmd.Flags()
	if flags.Changed("weight") {
		update.Weight = &setWeight
	}
	if flags.Changed("reps") {
		update.Reps = &setReps
	}
	if flags.Changed("exercise") {
		update.ExerciseName = &setExercise
	}
	if flags.Changed("number") {
		update.SetNumber = &setNumber
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.store.UpdateSetFields(ctx, id, update); err != nil {
		return eris.Wrapf(err, "failed to edit set %d", id)
	}

	set, err := ws.store.GetSet(ctx, id)
	if err != nil {
		return err
	}

	out := display.New(cmd.OutOrStdout())
	out.Successf("Updated set %d · %s #%d %s", set.ID, set.ExerciseName, set.SetNumber, display.FormatSet(set.Weight, set.Reps))
	return nil
}

func runSetDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0], "set")
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.store.DeleteSet(ctx, id); err != nil {
		return eris.Wrapf(err, "failed to delete set %d", id)
	}

	display.New(cmd.OutOrStdout()).Successf("Deleted set %d", id)
	return nil
}
