package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// completeExercises completes the exercise argument with logged exercise names
func completeExercises(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer ws.Close()

	exercises, err := ws.store.SearchExercises(cmd.Context(), toComplete, 20)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	names := make([]string, 0, len(exercises))
	for _, exercise := range exercises {
		names = append(names, exercise.Name)
	}

	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeWorkouts completes a workout ID argument with recent workouts
func completeWorkouts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer ws.Close()

	history, err := ws.store.GetWorkoutHistory(cmd.Context(), 20)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, workout := range history {
		ids = append(ids, fmt.Sprintf("%s\t%s %s", strconv.Itoa(workout.ID), workout.Date, workout.Name))
	}

	return ids, cobra.ShellCompDirectiveNoFileComp
}
