package routine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benoctopus/titan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	days, err := Default()
	require.NoError(t, err)
	require.Len(t, days, 6)

	for i, day := range days {
		assert.Equal(t, i, day.DayOfWeek, "days are sorted Monday first")
		assert.NotEmpty(t, day.RoutineName)
		assert.NotEmpty(t, day.Exercises)
	}

	week := Week(toPointers(days))
	assert.True(t, IsRestDay(week[6]), "Sunday is a rest day")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    []models.DayRoutine
		wantErr string
	}{
		{
			name: "sorted and trimmed",
			yaml: `
days:
  - day: 4
    name: " Legs "
    exercises: [Squat, "  ", Lunge]
  - day: 1
    name: Push
    exercises: [Bench Press]
`,
			want: []models.DayRoutine{
				{DayOfWeek: 1, RoutineName: "Push", Exercises: []string{"Bench Press"}},
				{DayOfWeek: 4, RoutineName: "Legs", Exercises: []string{"Squat", "Lunge"}},
			},
		},
		{
			name: "empty document",
			yaml: "",
			want: nil,
		},
		{
			name:    "day out of range",
			yaml:    "days:\n  - {day: 7, name: Extra, exercises: [Squat]}\n",
			wantErr: "invalid day: 7",
		},
		{
			name:    "duplicate day",
			yaml:    "days:\n  - {day: 0, name: A, exercises: [Squat]}\n  - {day: 0, name: B, exercises: [Row]}\n",
			wantErr: "Monday is listed more than once",
		},
		{
			name:    "missing name",
			yaml:    "days:\n  - {day: 2, exercises: [Squat]}\n",
			wantErr: "Wednesday has no routine name",
		},
		{
			name:    "no exercises",
			yaml:    "days:\n  - {day: 3, name: Push, exercises: []}\n",
			wantErr: "has no exercises",
		},
		{
			name:    "duplicate exercise ignoring case",
			yaml:    "days:\n  - {day: 5, name: Legs, exercises: [Squat, squat]}\n",
			wantErr: "more than once",
		},
		{
			name:    "malformed yaml",
			yaml:    "days: [",
			wantErr: "failed to parse routine YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses built-in routine", func(t *testing.T) {
		days, err := Load("")
		require.NoError(t, err)
		assert.NotEmpty(t, days)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routine.yaml")
		content := "days:\n  - {day: 6, name: Mobility, exercises: [Stretch]}\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		days, err := Load(path)
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, "Mobility", days[0].RoutineName)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read routine file")
	})
}

func TestWeek(t *testing.T) {
	week := Week([]*models.DayRoutine{
		{DayOfWeek: 2, RoutineName: "Legs", Exercises: []string{"Squat"}},
		nil,
	})

	require.Len(t, week, 7)
	for i, day := range week {
		assert.Equal(t, i, day.DayOfWeek)
		if i == 2 {
			assert.Equal(t, "Legs", day.RoutineName)
			assert.False(t, IsRestDay(day))
			continue
		}
		assert.Equal(t, RestDayName, day.RoutineName)
		assert.True(t, IsRestDay(day))
	}
}

func toPointers(days []models.DayRoutine) []*models.DayRoutine {
	out := make([]*models.DayRoutine, len(days))
	for i := range days {
		out[i] = &days[i]
	}
	return out
}
