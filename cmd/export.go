package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/benoctopus/titan/internal/display"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as JSON",
	Long: `Write every workout, set, exercise, and routine entry as one JSON
document, to stdout or to a file.

Examples:
  titan export > backup.json
  titan export --output ~/titan-backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if exportOutput == "" {
		return writeExport(ctx, ws, cmd.OutOrStdout())
	}

	if err := exportToFile(ctx, ws, exportOutput); err != nil {
		return err
	}
	display.New(cmd.ErrOrStderr()).Successf("Exported to %s", exportOutput)
	return nil
}

func writeExport(ctx context.Context, ws *workspace, w io.Writer) error {
	data, err := ws.store.Export(ctx)
	if err != nil {
		return eris.Wrap(err, "failed to export data")
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to marshal export to JSON")
	}

	if _, err := fmt.Fprintln(w, string(encoded)); err != nil {
		return eris.Wrap(err, "failed to write export")
	}
	return nil
}

func exportToFile(ctx context.Context, ws *workspace, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create export file: %s", path)
	}

	if err := writeExport(ctx, ws, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "failed to close export file: %s", path)
	}
	return nil
}
