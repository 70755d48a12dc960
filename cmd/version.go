package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information set via ldflags during build
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print the version, commit hash, and build date for titan.

This information is injected at build time via ldflags.`,
	Args: cobra.NoArgs,
	Run:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "titan %s\n", version)
	fmt.Fprintf(w, "  commit: %s\n", commit)
	fmt.Fprintf(w, "  built: %s\n", buildDate)
	fmt.Fprintf(w, "  go: %s\n", runtime.Version())
	fmt.Fprintf(w, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
