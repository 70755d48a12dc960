package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benoctopus/titan/internal/display"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	exercisesLimit int
	exercisesJSON  bool
)

var exercisesCmd = &cobra.Command{
	Use:     "exercises [query]",
	Aliases: []string{"ex"},
	Short:   "List or search known exercises",
	Long: `List exercises, most recently used first. A query filters names by
case-insensitive substring.

Examples:
  titan exercises
  titan exercises press --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExercises,
}

func init() {
	rootCmd.AddCommand(exercisesCmd)
	exercisesCmd.Flags().IntVarP(&exercisesLimit, "limit", "n", 20, "Maximum number of exercises to show")
	exercisesCmd.Flags().BoolVar(&exercisesJSON, "json", false, "Output in JSON format")
}

func runExercises(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var query string
	if len(args) > 0 {
		query = args[0]
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	exercises, err := ws.store.SearchExercises(ctx, query, exercisesLimit)
	if err != nil {
		return eris.Wrap(err, "failed to search exercises")
	}

	if exercisesJSON {
		data, err := json.MarshalIndent(exercises, "", "  ")
		if err != nil {
			return eris.Wrap(err, "failed to marshal exercises to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := display.New(cmd.OutOrStdout())
	if len(exercises) == 0 {
		if query != "" {
			out.Printf("No exercises matching %q.\n", query)
			return nil
		}
		out.Println("No exercises yet.")
		out.Println("Log a set with: titan log <exercise> <weight> <reps>")
		return nil
	}

	out.Printf("%-40s %-16s\n", "EXERCISE", "LAST USED")
	out.Println(strings.Repeat("-", 57))
	now := clock()
	for _, exercise := range exercises {
		out.Printf("%-40s %-16s\n", display.Truncate(exercise.Name, 40), display.FormatTimeAgo(exercise.LastUsedAt, now))
	}
	return nil
}
