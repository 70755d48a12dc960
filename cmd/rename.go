package cmd

import (
	"strings"

	"github.com/benoctopus/titan/internal/display"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var renameID int

var renameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename a workout",
	Long: `Rename the current workout, or the one given by --id.

Examples:
  titan rename "Heavy Legs"
  titan rename --id 12 "Deload Push"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
	renameCmd.Flags().IntVar(&renameID, "id", 0, "Workout to rename (defaults to the current one)")
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := strings.Join(args, " ")

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	workout, err := ws.resolveWorkout(ctx, renameID)
	if err != nil {
		return err
	}

	if err := ws.store.RenameWorkout(ctx, workout.ID, name); err != nil {
		return eris.Wrapf(err, "failed to rename workout #%d", workout.ID)
	}

	display.New(cmd.OutOrStdout()).Successf("Renamed #%d: %s → %s", workout.ID, workout.Name, strings.TrimSpace(name))
	return nil
}
