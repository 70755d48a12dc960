//go:build integration
// +build integration

// Package integration contains integration tests for titan against real
// database files. These tests create isolated environments and do not modify
// global titan configuration.
//
// Run integration tests with:
//
//	go test -tags=integration -v ./integration/...
package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benoctopus/titan/cmd"
	"github.com/benoctopus/titan/internal/config"
	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/models"
	"github.com/benoctopus/titan/internal/routine"
)

// TestEnvironment holds the isolated test environment configuration
type TestEnvironment struct {
	// ConfigDir is the isolated XDG config directory for this test
	ConfigDir string
	// DBPath is the path to the test database
	DBPath string
	// Now is the clock shared by every store and command in the test
	Now time.Time

	t *testing.T
}

// SetupTestEnvironment creates an isolated test environment that doesn't
// affect global titan configuration
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	tempDir := t.TempDir()
	env := &TestEnvironment{
		ConfigDir: filepath.Join(tempDir, "config"),
		DBPath:    filepath.Join(tempDir, "config", "titan", "titan.db"),
		// Monday
		Now: time.Date(2026, 10, 12, 18, 30, 0, 0, time.UTC),
		t:   t,
	}

	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)
	t.Setenv("HOME", tempDir)
	t.Setenv(config.EnvDBPath, env.DBPath)
	for _, name := range []string{config.EnvDayPolicy, config.EnvLogLevel, config.EnvLogFile, config.EnvRoutineFile, config.EnvWeightStep, config.EnvFuzzyFinder} {
		t.Setenv(name, "")
	}

	return env
}

func (env *TestEnvironment) clock() time.Time {
	return env.Now
}

// Advance moves the shared clock forward
func (env *TestEnvironment) Advance(d time.Duration) {
	env.Now = env.Now.Add(d)
}

// OpenStore opens the environment's database file, seeded with the built-in routine
func (env *TestEnvironment) OpenStore(opts ...db.Option) *db.Store {
	env.t.Helper()

	opts = append([]db.Option{db.WithClock(env.clock)}, opts...)
	store, err := db.Open(context.Background(), env.DBPath, opts...)
	if err != nil {
		env.t.Fatalf("failed to open store: %v", err)
	}
	env.t.Cleanup(func() { store.Close() })

	days, err := routine.Default()
	if err != nil {
		env.t.Fatalf("failed to load default routine: %v", err)
	}
	if _, err := store.SeedRoutine(context.Background(), days); err != nil {
		env.t.Fatalf("failed to seed routine: %v", err)
	}
	return store
}

// Titan runs a titan command in-process and returns its stdout
func (env *TestEnvironment) Titan(args ...string) (string, error) {
	env.t.Helper()

	var stdout, stderr bytes.Buffer
	err := cmd.Run(context.Background(), args, cmd.Options{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		Clock:  env.clock,
	})
	return stdout.String(), err
}

// MustTitan runs a titan command and fails the test on error
func (env *TestEnvironment) MustTitan(args ...string) string {
	env.t.Helper()

	out, err := env.Titan(args...)
	if err != nil {
		env.t.Fatalf("titan %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// LogSession records a finished workout on the current day
func (env *TestEnvironment) LogSession(store *db.Store, sets map[string][][2]float64, order ...string) int {
	env.t.Helper()
	ctx := context.Background()

	day := models.DayIndex(env.Now)
	id, err := store.GetOrResumeWorkout(ctx, day, "")
	if err != nil {
		env.t.Fatalf("failed to start workout: %v", err)
	}

	for _, name := range order {
		for _, set := range sets[name] {
			if _, err := store.LogSet(ctx, id, name, set[0], int(set[1]), &day); err != nil {
				env.t.Fatalf("failed to log %s: %v", name, err)
			}
		}
	}

	if err := store.FinishWorkout(ctx, id); err != nil {
		env.t.Fatalf("failed to finish workout: %v", err)
	}
	return id
}
