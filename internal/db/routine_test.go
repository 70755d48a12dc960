package db

import (
	"context"
	"testing"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoutine() []models.DayRoutine {
	return []models.DayRoutine{
		{DayOfWeek: 0, RoutineName: "Push", Exercises: []string{"Bench Press", "Overhead Press", "Dips"}},
		{DayOfWeek: 2, RoutineName: "Pull", Exercises: []string{"Deadlift", "Row"}},
		{DayOfWeek: 4, RoutineName: "Legs", Exercises: []string{"Squat", " ", "Lunge"}},
	}
}

func TestSeedRoutine(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	seeded, err := store.SeedRoutine(ctx, testRoutine())
	require.NoError(t, err)
	assert.True(t, seeded)

	monday, err := store.GetRoutineForDay(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, monday)
	assert.Equal(t, "Push", monday.RoutineName)
	assert.Equal(t, []string{"Bench Press", "Overhead Press", "Dips"}, monday.Exercises)

	friday, err := store.GetRoutineForDay(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, friday)
	assert.Equal(t, []string{"Squat", "Lunge"}, friday.Exercises, "blank entries are skipped")

	sunday, err := store.GetRoutineForDay(ctx, 6)
	require.NoError(t, err)
	assert.Nil(t, sunday, "days without a routine are rest days")
}

func TestSeedRoutine_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	_, err := store.SeedRoutine(ctx, testRoutine())
	require.NoError(t, err)

	replacement := []models.DayRoutine{
		{DayOfWeek: 0, RoutineName: "Chest", Exercises: []string{"Fly"}},
	}
	seeded, err := store.SeedRoutine(ctx, replacement)
	require.NoError(t, err)
	assert.False(t, seeded)

	monday, err := store.GetRoutineForDay(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Push", monday.RoutineName, "existing routine is never overwritten")
}

func TestSeedRoutine_Validation(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	_, err := store.SeedRoutine(ctx, []models.DayRoutine{{DayOfWeek: 7, RoutineName: "Extra"}})
	assert.True(t, eris.Is(err, ErrValidation))

	_, err = store.SeedRoutine(ctx, []models.DayRoutine{{DayOfWeek: 1, RoutineName: ""}})
	assert.True(t, eris.Is(err, ErrValidation))

	week, err := store.GetWeeklyRoutine(ctx)
	require.NoError(t, err)
	assert.Empty(t, week)
}

func TestGetWeeklyRoutine(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	_, err := store.SeedRoutine(ctx, testRoutine())
	require.NoError(t, err)

	week, err := store.GetWeeklyRoutine(ctx)
	require.NoError(t, err)
	require.Len(t, week, 3)

	days := []int{week[0].DayOfWeek, week[1].DayOfWeek, week[2].DayOfWeek}
	assert.Equal(t, []int{0, 2, 4}, days)

	_, err = store.GetRoutineForDay(ctx, -1)
	assert.True(t, eris.Is(err, ErrValidation))
}
