package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benoctopus/titan/internal/config"
	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/models"
	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

// cli runs commands against a private database and config directory
type cli struct {
	dir string
	db  string
	now time.Time
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, env := range []string{
		config.EnvDBPath, config.EnvDayPolicy, config.EnvLogLevel, config.EnvLogFile,
		config.EnvRoutineFile, config.EnvWeightStep, config.EnvFuzzyFinder,
	} {
		t.Setenv(env, "")
	}

	return &cli{
		dir: dir,
		db:  filepath.Join(dir, "data", "titan.db"),
		// Monday
		now: time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC),
	}
}

func (c *cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"--db", c.db}, args...), Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		Clock:  func() time.Time { return c.now },
	})
	return stdout.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := c.run(t, "", args...)
	require.NoError(t, err, "titan %s", strings.Join(args, " "))
	return out
}

func (c *cli) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *cli) showJSON(t *testing.T, args ...string) workoutDetail {
	t.Helper()

	var detail workoutDetail
	out := c.mustRun(t, append([]string{"show", "--json"}, args...)...)
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	return detail
}

func TestStartNamesWorkoutAfterRoutine(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "start")
	assert.Contains(t, out, "Started workout #1: Push (Monday)")
	assert.Contains(t, out, "Bench Press")
	assert.Contains(t, out, "new")

	out = c.mustRun(t, "start")
	assert.Contains(t, out, "Resumed workout #1")

	_, err := os.Stat(c.db)
	assert.NoError(t, err, "database file should be created")
}

func TestStartRejectsInvalidDay(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "", "start", "--day", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --day 9")
}

func TestLogRecallsPreviousSession(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "log", "Bench Press", "100", "8")
	assert.Contains(t, out, "Set 1 · Bench Press 100kg × 8")
	c.mustRun(t, "log", "bench press", "102.5", "6")
	c.mustRun(t, "finish")

	// A week later the same exercise defaults to last Monday's numbers
	c.advance(7 * 24 * time.Hour)
	out = c.mustRun(t, "log", "Bench Press")
	assert.Contains(t, out, "Set 1 · Bench Press 100kg × 8")
	assert.Contains(t, out, "Previous: 100kg × 8")

	out = c.mustRun(t, "log", "Bench Press")
	assert.Contains(t, out, "Set 2 · Bench Press 102.5kg × 6")

	// Set 3 has no match and repeats the last set of the previous session
	out = c.mustRun(t, "log", "Bench Press")
	assert.Contains(t, out, "Set 3 · Bench Press 102.5kg × 6")

	out = c.mustRun(t, "today")
	assert.Contains(t, out, "In progress: #2 Push · 3 sets")
	assert.Contains(t, out, "Previous: 102.5kg × 6")
}

func TestTodayListsRoutineBeforeRecall(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Farmer Carry", "40", "30")
	c.mustRun(t, "log", "Bench Press", "100", "8")
	c.mustRun(t, "finish")
	c.advance(7 * 24 * time.Hour)

	out := c.mustRun(t, "today")
	bench := strings.Index(out, "Bench Press")
	carry := strings.Index(out, "Farmer Carry")
	require.NotEqual(t, -1, bench)
	require.NotEqual(t, -1, carry)
	assert.Less(t, bench, carry, "routine exercises come before recalled ones")
	assert.Equal(t, 1, strings.Count(out, "Bench Press"), "an exercise in both lists is shown once")
	assert.Contains(t, out, "1 recalled from past Mondays (latest-session)")

	t.Setenv(config.EnvDayPolicy, "recency")
	out = c.mustRun(t, "today")
	assert.Contains(t, out, "1 recalled from past Mondays (recency)")

	help := c.mustRun(t, "today", "--help")
	assert.Contains(t, help, "take precedence")
	help = c.mustRun(t, "start", "--help")
	assert.Contains(t, help, "in its routine position")
}

func TestLogNewExerciseUsesDefaults(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "log", "Landmine Press")
	assert.Contains(t, out, "Set 1 · Landmine Press 20kg × 8")
}

func TestLogPicksExerciseFromPrompt(t *testing.T) {
	c := newCLI(t)

	// Monday's routine is offered first
	out, err := c.run(t, "1\n", "log", "", "60", "10")
	require.Error(t, err, "an empty name is rejected")
	assert.Empty(t, out)

	out, err = c.run(t, "1\n", "log")
	require.NoError(t, err)
	assert.Contains(t, out, "Set 1 · Bench Press 20kg × 8")

	out, err = c.run(t, "Cable Fly\n", "log")
	require.NoError(t, err)
	assert.Contains(t, out, "Set 1 · Cable Fly")
}

func TestLogRejectsBadNumbers(t *testing.T) {
	c := newCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "weight not a number", args: []string{"log", "Squat", "heavy", "5"}},
		{name: "reps not a number", args: []string{"log", "Squat", "100", "five"}},
		{name: "negative weight", args: []string{"log", "--", "Squat", "-5", "5"}},
		{name: "negative reps", args: []string{"log", "--", "Squat", "100", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run(t, "", tt.args...)
			require.Error(t, err)
			assert.True(t, eris.Is(err, db.ErrValidation), "got %v", err)
		})
	}
}

func TestShowGroupsSetsByExercise(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Squat", "140", "5")
	c.mustRun(t, "log", "Leg Press", "200", "10")
	c.mustRun(t, "log", "squat", "145", "3")

	detail := c.showJSON(t)
	require.NotNil(t, detail.Workout)
	assert.Equal(t, 1, detail.ID)
	require.Len(t, detail.Exercises, 2)
	assert.Equal(t, "Squat", detail.Exercises[0].Name)
	assert.Len(t, detail.Exercises[0].Sets, 2)
	assert.Equal(t, 145.0, detail.Exercises[0].Sets[1].Weight)
	assert.Equal(t, "Leg Press", detail.Exercises[1].Name)

	out := c.mustRun(t, "show", "--ids")
	assert.Contains(t, out, "#1 Push")
	assert.Contains(t, out, "in progress")
	assert.Contains(t, out, "2. 145kg × 3")
	assert.Contains(t, out, "(id 3)")
}

func TestShowWithoutWorkout(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "", "show")
	require.Error(t, err)
	assert.True(t, eris.Is(err, db.ErrNotFound))
	assert.Contains(t, err.Error(), "titan start")

	_, err = c.run(t, "", "show", "42")
	require.Error(t, err)
	assert.True(t, eris.Is(err, db.ErrNotFound))
}

func TestSetEditAndDelete(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Deadlift", "180", "5")
	c.mustRun(t, "log", "Deadlift", "190", "3")

	out := c.mustRun(t, "set", "edit", "2", "--weight", "200", "--reps", "2")
	assert.Contains(t, out, "Updated set 2 · Deadlift #2 200kg × 2")

	out = c.mustRun(t, "set", "edit", "1", "--exercise", "Romanian Deadlift")
	assert.Contains(t, out, "Romanian Deadlift")

	c.mustRun(t, "set", "delete", "2")
	detail := c.showJSON(t)
	require.Len(t, detail.Exercises, 1)
	assert.Equal(t, "Romanian Deadlift", detail.Exercises[0].Name)

	_, err := c.run(t, "", "set", "delete", "2")
	assert.True(t, eris.Is(err, db.ErrNotFound))

	_, err = c.run(t, "", "set", "edit", "abc", "--reps", "1")
	assert.True(t, eris.Is(err, db.ErrValidation))
}

func TestFinishFromFile(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Bench Press", "100", "8")
	c.mustRun(t, "log", "Bench Press", "100", "7")
	c.mustRun(t, "log", "Overhead Press", "60", "8")

	yamlOut := c.mustRun(t, "show", "--yaml")
	assert.Contains(t, yamlOut, "exercises:")
	blocks, err := parseSaveFile([]byte(yamlOut))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	// Drop the second bench set, change the press, add dips
	blocks[0].Sets = blocks[0].Sets[:1]
	blocks[1].Sets[0].Reps = 10
	blocks = append(blocks, models.ExerciseBlock{Name: "Dips", Sets: []models.SetDraft{{Weight: 0, Reps: 12}}})

	path := filepath.Join(c.dir, "workout.yaml")
	writeSaveFile(t, path, blocks)

	c.advance(45 * time.Minute)
	out := c.mustRun(t, "finish", "--file", path)
	assert.Contains(t, out, "Finished #1 Push · 3 sets · 45m")

	detail := c.showJSON(t, "1")
	require.NotNil(t, detail.CompletedAt)
	require.Len(t, detail.Exercises, 3)
	assert.Len(t, detail.Exercises[0].Sets, 1)
	assert.Equal(t, 10, detail.Exercises[1].Sets[0].Reps)
	assert.Equal(t, "Dips", detail.Exercises[2].Name)
}

func TestFinishFromInvalidFileWritesNothing(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Squat", "100", "5")

	path := filepath.Join(c.dir, "workout.yaml")
	writeSaveFile(t, path, []models.ExerciseBlock{
		{Name: "Squat", Sets: []models.SetDraft{{ID: 1, Weight: 100, Reps: 5}}},
		{Name: "squat", Sets: []models.SetDraft{{Weight: 110, Reps: 3}}},
	})

	_, err := c.run(t, "", "finish", "--file", path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, db.ErrValidation))

	detail := c.showJSON(t)
	assert.Nil(t, detail.CompletedAt)
	require.Len(t, detail.Exercises, 1)
	assert.Len(t, detail.Exercises[0].Sets, 1)
}

func TestPreviousExcludesWorkoutInProgress(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "previous", "Squat")
	assert.Contains(t, out, "No previous sets for Squat")

	c.mustRun(t, "log", "Squat", "100", "5")
	c.mustRun(t, "log", "Squat", "105", "5")
	c.mustRun(t, "finish")

	c.advance(2 * 24 * time.Hour)
	c.mustRun(t, "log", "Squat", "60", "10")

	out = c.mustRun(t, "previous", "squat")
	assert.Contains(t, out, "1. 100kg × 5")
	assert.Contains(t, out, "2. 105kg × 5")
	assert.Contains(t, out, "Try: 107.5kg × 5")
	assert.NotContains(t, out, "60kg")

	var result previousSession
	require.NoError(t, json.Unmarshal([]byte(c.mustRun(t, "previous", "Squat", "--json")), &result))
	assert.Equal(t, 1, result.Workout.ID)
	assert.Len(t, result.Sets, 2)
}

func TestRenameWorkout(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "start")
	out := c.mustRun(t, "rename", "Heavy", "Push")
	assert.Contains(t, out, "Renamed #1: Push → Heavy Push")

	_, err := c.run(t, "", "rename", "--id", "9", "Nope")
	assert.True(t, eris.Is(err, db.ErrNotFound))
}

func TestHistoryAndStats(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "history")
	assert.Contains(t, out, "No workouts found.")

	c.mustRun(t, "log", "Squat", "100", "5")
	c.mustRun(t, "finish")
	c.advance(24 * time.Hour)
	c.mustRun(t, "log", "Row", "80", "8")
	c.mustRun(t, "log", "Row", "80", "8")

	out = c.mustRun(t, "history")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "Today")
	assert.Contains(t, lines[2], "in progress")
	assert.Contains(t, lines[3], "Yesterday")

	var stats models.Stats
	require.NoError(t, json.Unmarshal([]byte(c.mustRun(t, "stats", "--json")), &stats))
	assert.Equal(t, models.Stats{Workouts: 2, Sets: 3, Exercises: 2}, stats)

	out = c.mustRun(t, "exercises", "ro")
	assert.Contains(t, out, "Row")
	assert.NotContains(t, out, "Squat")
}

func TestRoutineShowsWholeWeek(t *testing.T) {
	c := newCLI(t)

	var week []models.DayRoutine
	require.NoError(t, json.Unmarshal([]byte(c.mustRun(t, "routine", "--json")), &week))
	require.Len(t, week, 7)
	assert.Equal(t, "Push", week[0].RoutineName)
	assert.Equal(t, "Rest Day", week[6].RoutineName)

	out := c.mustRun(t, "routine")
	assert.Contains(t, out, "→ Monday")
}

func TestRoutineFileIsSeeded(t *testing.T) {
	c := newCLI(t)

	path := filepath.Join(c.dir, "routine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("days:\n  - {day: 0, name: Full Body, exercises: [Squat, Bench Press]}\n"), 0o644))
	t.Setenv(config.EnvRoutineFile, path)

	out := c.mustRun(t, "start")
	assert.Contains(t, out, "Started workout #1: Full Body")
}

func TestClear(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Squat", "100", "5")

	_, err := c.run(t, "", "clear")
	require.Error(t, err, "non-interactive clear needs --yes")
	assert.True(t, eris.Is(err, db.ErrValidation))

	backup := filepath.Join(c.dir, "backup.json")
	c.mustRun(t, "clear", "--yes", "--backup", backup)

	var exported db.ExportData
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Len(t, exported.Sets, 1)

	var stats models.Stats
	require.NoError(t, json.Unmarshal([]byte(c.mustRun(t, "stats", "--json")), &stats))
	assert.Equal(t, models.Stats{}, stats)

	out := c.mustRun(t, "today")
	assert.Contains(t, out, "Bench Press", "routine is seeded again")
}

func TestExport(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Squat", "100", "5")

	var exported db.ExportData
	require.NoError(t, json.Unmarshal([]byte(c.mustRun(t, "export")), &exported))
	assert.Len(t, exported.Workouts, 1)
	assert.Len(t, exported.Sets, 1)
	assert.NotEmpty(t, exported.Routine)

	path := filepath.Join(c.dir, "export.json")
	out := c.mustRun(t, "export", "--output", path)
	assert.Empty(t, out)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestConfigCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "config", "validate")
	assert.Contains(t, out, "using defaults")

	out = c.mustRun(t, "config", "show")
	assert.Contains(t, out, "day_policy: latest-session")
	assert.Contains(t, out, c.db)

	out = c.mustRun(t, "config", "path")
	assert.Equal(t, filepath.Join(c.dir, "titan", "config.yaml"), strings.TrimSpace(out))

	require.NoError(t, createDefaultConfig())
	out = c.mustRun(t, "config", "validate")
	assert.Contains(t, out, "Config is valid")
}

func TestVersion(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "version")
	assert.True(t, strings.HasPrefix(out, "titan dev"))
}

func TestFlagsResetBetweenRuns(t *testing.T) {
	c := newCLI(t)

	c.mustRun(t, "log", "Squat", "100", "5")
	c.mustRun(t, "show", "--json")

	out := c.mustRun(t, "show")
	assert.Contains(t, out, "#1 Push", "--json must not stick to the next run")
}

func TestSuggestSet(t *testing.T) {
	previous := []*models.ExerciseSet{
		{SetNumber: 1, Weight: 100, Reps: 8},
		{SetNumber: 2, Weight: 105, Reps: 6},
	}

	tests := []struct {
		name       string
		previous   []*models.ExerciseSet
		n          int
		wantWeight float64
		wantReps   int
	}{
		{name: "matching set", previous: previous, n: 2, wantWeight: 105, wantReps: 6},
		{name: "beyond last session", previous: previous, n: 4, wantWeight: 105, wantReps: 6},
		{name: "never logged", previous: nil, n: 1, wantWeight: defaultWeight, wantReps: defaultReps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weight, reps := suggestSet(tt.previous, tt.n)
			assert.Equal(t, tt.wantWeight, weight)
			assert.Equal(t, tt.wantReps, reps)
		})
	}
}

func TestSuggestProgression(t *testing.T) {
	assert.Nil(t, suggestProgression(nil, 2.5))

	got := suggestProgression([]*models.ExerciseSet{
		{SetNumber: 1, Weight: 100, Reps: 5},
		{SetNumber: 2, Weight: 100, Reps: 6},
		{SetNumber: 3, Weight: 90, Reps: 10},
	}, 2.5)
	assert.Equal(t, &models.SetDraft{Weight: 102.5, Reps: 6}, got)
}

func TestParseSaveFile(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []models.ExerciseBlock
		wantErr bool
	}{
		{
			name: "sets with and without ids",
			data: "exercises:\n  - name: Squat\n    sets:\n      - {id: 3, weight: 100, reps: 5}\n      - {weight: 102.5, reps: 3}\n",
			want: []models.ExerciseBlock{{Name: "Squat", Sets: []models.SetDraft{{ID: 3, Weight: 100, Reps: 5}, {Weight: 102.5, Reps: 3}}}},
		},
		{name: "empty document", data: "", want: []models.ExerciseBlock{}},
		{name: "unknown field", data: "exercises:\n  - name: Squat\n    weight: 100\n", wantErr: true},
		{name: "malformed", data: "exercises: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSaveFile([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, eris.Is(err, db.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeSaveFile(t *testing.T, path string, blocks []models.ExerciseBlock) {
	t.Helper()

	data, err := yaml.Marshal(saveFile{Exercises: blocks})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
