package cmd

import (
	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/display"
	"github.com/benoctopus/titan/internal/tty"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	clearYes    bool
	clearBackup string
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all workout data",
	Long: `Delete the database and start over with an empty store. The weekly
routine is seeded again afterwards.

Examples:
  titan clear
  titan clear --backup before-clear.json
  titan clear --yes             # Skip confirmation`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	clearCmd.Flags().StringVar(&clearBackup, "backup", "", "Export everything to this file first")
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !clearYes {
		if !interactive() {
			return eris.Wrap(db.ErrValidation, "refusing to delete all data without --yes")
		}
		ok, err := tty.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Delete all workouts, sets, and exercises?")
		if err != nil {
			return err
		}
		if !ok {
			display.New(cmd.OutOrStdout()).Info("Nothing deleted")
			return nil
		}
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	out := display.New(cmd.OutOrStdout())
	if clearBackup != "" {
		if err := exportToFile(ctx, ws, clearBackup); err != nil {
			return eris.Wrap(err, "backup failed, nothing deleted")
		}
		out.Infof("Backed up to %s", clearBackup)
	}

	if err := ws.store.Wipe(ctx); err != nil {
		return eris.Wrap(err, "failed to clear data")
	}
	if err := ws.seedRoutine(ctx); err != nil {
		return err
	}

	out.Success("All data deleted")
	return nil
}
