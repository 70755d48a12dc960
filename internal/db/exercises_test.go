package db

import (
	"context"
	"strings"
	"testing"

	"github.com/benoctopus/titan/internal/models"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateExercise_CaseInsensitiveIdentity(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	faker := gofakeit.New(42)

	for i := 0; i < 20; i++ {
		name := faker.Adjective() + " " + faker.Noun() + " " + faker.Verb()

		first, err := store.GetOrCreateExercise(ctx, strings.ToLower(name))
		require.NoError(t, err)

		second, err := store.GetOrCreateExercise(ctx, "  "+strings.ToUpper(name)+" ")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "names differing only by case must share a record: %q", name)
		assert.False(t, second.LastUsedAt.Before(first.LastUsedAt), "last used should not move backwards")

		stored, err := store.GetExercise(ctx, name)
		require.NoError(t, err)
		assert.True(t, stored.LastUsedAt.Equal(second.LastUsedAt))
	}
}

func TestGetOrCreateExercise_KeepsFirstSpelling(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	created, err := store.GetOrCreateExercise(ctx, "  Bench Press ")
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", created.Name)
	assert.True(t, created.CreatedAt.Equal(created.LastUsedAt))

	found, err := store.GetOrCreateExercise(ctx, "BENCH PRESS")
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", found.Name)

	count, err := store.GetExerciseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetOrCreateExercise_BlankName(t *testing.T) {
	store, _ := setupTestStore(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := store.GetOrCreateExercise(context.Background(), name)
		require.Error(t, err)
		assert.True(t, eris.Is(err, ErrValidation), "blank name %q should be a validation error", name)
	}
}

func TestGetExercise_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.GetExercise(context.Background(), "Squat")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSearchExercises(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	for _, name := range []string{"Bench Press", "Overhead Press", "Squat", "Leg Press"} {
		_, err := store.GetOrCreateExercise(ctx, name)
		require.NoError(t, err)
	}
	// Touch Overhead Press so it becomes the most recently used
	_, err := store.GetOrCreateExercise(ctx, "overhead press")
	require.NoError(t, err)

	t.Run("empty query returns most recent", func(t *testing.T) {
		results, err := store.SearchExercises(ctx, "  ", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"Overhead Press", "Leg Press"}, exerciseNames(results))
	})

	t.Run("substring match ignores case", func(t *testing.T) {
		results, err := store.SearchExercises(ctx, "PRESS", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"Overhead Press", "Leg Press", "Bench Press"}, exerciseNames(results))
	})

	t.Run("limit applies to matches", func(t *testing.T) {
		results, err := store.SearchExercises(ctx, "press", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Overhead Press"}, exerciseNames(results))
	})

	t.Run("no match is empty not error", func(t *testing.T) {
		results, err := store.SearchExercises(ctx, "deadlift", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		results, err := store.SearchExercises(ctx, "%", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func exerciseNames(exercises []*models.Exercise) []string {
	names := make([]string, 0, len(exercises))
	for _, e := range exercises {
		names = append(names, e.Name)
	}
	return names
}
