package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	finishFile string
	finishEdit bool
)

var finishCmd = &cobra.Command{
	Use:     "finish [workout-id]",
	Aliases: []string{"done"},
	Short:   "Finish a workout, optionally saving an edited version",
	Long: `Mark a workout as complete. Without an ID the current workout is finished.

With --edit the workout opens in your editor as YAML; with --file an edited
document is read from disk. The whole workout is then saved at once: sets
that were removed are deleted, changed sets are updated, and sets without
an id are added. Nothing is written if any part of the save fails.

Examples:
  titan finish
  titan finish --edit
  titan show --yaml > w.yaml && titan finish --file w.yaml`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeWorkouts,
	RunE:              runFinish,
}

func init() {
	rootCmd.AddCommand(finishCmd)
	finishCmd.Flags().StringVarP(&finishFile, "file", "f", "", "Save the workout from a YAML file")
	finishCmd.Flags().BoolVarP(&finishEdit, "edit", "e", false, "Edit the workout in $EDITOR before saving")
	finishCmd.MarkFlagsMutuallyExclusive("file", "edit")
}

func runFinish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var id int
	if len(args) > 0 {
		var err error
		if id, err = parseID(args[0], "workout"); err != nil {
			return err
		}
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	workout, err := ws.resolveWorkout(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case finishFile != "":
		var data []byte
		if data, err = os.ReadFile(finishFile); err != nil {
			return eris.Wrapf(err, "failed to read workout file: %s", finishFile)
		}
		err = saveFromYAML(ctx, ws, workout, data)
	case finishEdit:
		err = editAndSave(ctx, ws, cmd, workout)
	default:
		err = ws.store.FinishWorkout(ctx, workout.ID)
	}
	if err != nil {
		return eris.Wrapf(err, "failed to finish workout #%d", workout.ID)
	}

	finished, err := ws.store.GetWorkout(ctx, workout.ID)
	if err != nil {
		return err
	}
	sets, err := ws.store.GetSetsForWorkout(ctx, workout.ID)
	if err != nil {
		return err
	}

	display.New(cmd.OutOrStdout()).Successf("Finished #%d %s · %d sets · %s",
		finished.ID, finished.Name, len(sets), workoutStatus(finished))
	return nil
}

// parseSaveFile decodes a workout document as written by show --yaml
func parseSaveFile(data []byte) ([]models.ExerciseBlock, error) {
	var file saveFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, eris.Wrapf(db.ErrValidation, "failed to parse workout YAML: %v", err)
	}
	if file.Exercises == nil {
		file.Exercises = []models.ExerciseBlock{}
	}
	return file.Exercises, nil
}

func saveFromYAML(ctx context.Context, ws *workspace, workout *models.Workout, data []byte) error {
	blocks, err := parseSaveFile(data)
	if err != nil {
		return err
	}

	day := workoutDay(workout)
	return ws.store.SaveWorkout(ctx, workout.ID, blocks, &day)
}

// editAndSave opens the workout in the user's editor and saves the result.
// An unchanged document just finishes the workout.
func editAndSave(ctx context.Context, ws *workspace, cmd *cobra.Command, workout *models.Workout) error {
	blocks, _, err := workoutBlocks(ctx, ws.store, workout.ID)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(saveFile{Exercises: blocks})
	if err != nil {
		return eris.Wrap(err, "failed to marshal workout to YAML")
	}

	f, err := os.CreateTemp("", "titan-workout-*.yaml")
	if err != nil {
		return eris.Wrap(err, "failed to create temp file")
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return eris.Wrapf(err, "failed to write temp file: %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "failed to close temp file: %s", path)
	}

	hashBefore, err := hashFile(path)
	if err != nil {
		return eris.Wrap(err, "failed to hash workout file")
	}

	editor := getEditor()
	editorCmd := exec.CommandContext(ctx, editor, path)
	editorCmd.Stdin = cmd.InOrStdin()
	editorCmd.Stdout = cmd.OutOrStdout()
	editorCmd.Stderr = cmd.ErrOrStderr()
	if err := editorCmd.Run(); err != nil {
		return eris.Wrapf(err, "failed to run editor: %s", editor)
	}

	hashAfter, err := hashFile(path)
	if err != nil {
		return eris.Wrap(err, "failed to hash workout file after editing")
	}
	if hashBefore == hashAfter {
		return ws.store.FinishWorkout(ctx, workout.ID)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "failed to read edited workout: %s", path)
	}
	return saveFromYAML(ctx, ws, workout, edited)
}
