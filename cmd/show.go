package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	showJSON bool
	showYAML bool
	showIDs  bool
)

var showCmd = &cobra.Command{
	Use:   "show [workout-id]",
	Short: "Show a workout and its sets",
	Long: `Show the sets of a workout grouped by exercise. Without an ID the
current workout (or today's latest) is shown.

--yaml prints the workout in the format accepted by "titan finish --file",
so a session can be edited as a whole:

  titan show --yaml > workout.yaml
  $EDITOR workout.yaml
  titan finish --file workout.yaml`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeWorkouts,
	RunE:              runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "Output as an editable save file")
	showCmd.Flags().BoolVar(&showIDs, "ids", false, "Show set IDs")
}

// workoutDetail is the JSON shape of a workout with its sets
type workoutDetail struct {
	*models.Workout
	Exercises []models.ExerciseBlock `json:"exercises"`
}

// saveFile is the YAML document read by finish --file
type saveFile struct {
	Exercises []models.ExerciseBlock `yaml:"exercises"`
}

func runShow(cmd *cobra.Command, args []string) error {
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

	blocks, sets, err := workoutBlocks(ctx, ws.store, workout.ID)
	if err != nil {
		return err
	}

	switch {
	case showJSON:
		data, err := json.MarshalIndent(workoutDetail{Workout: workout, Exercises: blocks}, "", "  ")
		if err != nil {
			return eris.Wrap(err, "failed to marshal workout to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case showYAML:
		data, err := yaml.Marshal(saveFile{Exercises: blocks})
		if err != nil {
			return eris.Wrap(err, "failed to marshal workout to YAML")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := display.New(cmd.OutOrStdout())
	out.Heading(fmt.Sprintf("#%d %s", workout.ID, workout.Name))

	status := out.WarningText("in progress")
	if workout.CompletedAt != nil {
		status = out.SuccessText("done in " + display.FormatDuration(workout.CompletedAt.Sub(workout.StartedAt)))
	}
	out.Printf("%s · %s · %s\n", display.FormatDate(workout.Date, clock()), models.DayName(workoutDay(workout)), status)

	if len(sets) == 0 {
		out.Println(out.Faint("No sets logged yet."))
		return nil
	}

	for _, block := range blocks {
		out.Println()
		out.Println(out.Bold(block.Name))
		for i, set := range block.Sets {
			line := fmt.Sprintf("  %d. %s", i+1, display.FormatSet(set.Weight, set.Reps))
			if showIDs {
				line += out.Faint(fmt.Sprintf("  (id %d)", set.ID))
			}
			out.Println(line)
		}
	}
	return nil
}

// workoutBlocks groups a workout's sets by exercise, exercises in the order
// they were first logged and sets by set number
func workoutBlocks(ctx context.Context, store *db.Store, workoutID int) ([]models.ExerciseBlock, []*models.ExerciseSet, error) {
	sets, err := store.GetSetsForWorkout(ctx, workoutID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "failed to load workout sets")
	}

	blocks := []models.ExerciseBlock{}
	index := make(map[string]int)
	for _, set := range sets {
		key := models.NormalizeName(set.ExerciseName)
		i, ok := index[key]
		if !ok {
			i = len(blocks)
			index[key] = i
			blocks = append(blocks, models.ExerciseBlock{Name: set.ExerciseName})
		}
		blocks[i].Sets = append(blocks[i].Sets, models.SetDraft{ID: set.ID, Weight: set.Weight, Reps: set.Reps})
	}

	numbers := make(map[int]int, len(sets))
	for _, set := range sets {
		numbers[set.ID] = set.SetNumber
	}
	for _, block := range blocks {
		sort.SliceStable(block.Sets, func(i, j int) bool {
			return numbers[block.Sets[i].ID] < numbers[block.Sets[j].ID]
		})
	}

	return blocks, sets, nil
}
