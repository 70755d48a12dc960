package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/benoctopus/titan/internal/config"
	"github.com/benoctopus/titan/internal/db"
	"github.com/benoctopus/titan/internal/logging"
	"github.com/benoctopus/titan/internal/models"
	"github.com/benoctopus/titan/internal/routine"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// workspace is what a command needs to talk to the store
type workspace struct {
	cfg      *config.Config
	store    *db.Store
	logger   *zap.Logger
	closeLog func() error
}

// openWorkspace resolves configuration, sets up logging, opens the database
// and seeds the weekly routine on first use
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config")
	}
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, closeLog, err := logging.Setup(logging.SetupParams{LogFile: cfg.LogFile, LogLevel: level})
	if err != nil {
		return nil, eris.Wrap(err, "failed to set up logging")
	}

	ws := &workspace{cfg: cfg, logger: logger, closeLog: closeLog}
	if err := ws.open(ctx); err != nil {
		_ = ws.Close()
		return nil, err
	}
	return ws, nil
}

func (ws *workspace) open(ctx context.Context) error {
	policy, err := db.ParseDayPolicy(ws.cfg.DayPolicy)
	if err != nil {
		return err
	}

	if ws.cfg.DBPath != db.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(ws.cfg.DBPath), 0o755); err != nil {
			return eris.Wrapf(err, "failed to create database directory for: %s", ws.cfg.DBPath)
		}
	}

	store, err := db.Open(ctx, ws.cfg.DBPath,
		db.WithLogger(ws.logger),
		db.WithClock(clock),
		db.WithDayPolicy(policy),
	)
	if err != nil {
		return eris.Wrap(err, "failed to open database")
	}
	ws.store = store

	return ws.seedRoutine(ctx)
}

// seedRoutine stores the configured weekly routine if none exists yet
func (ws *workspace) seedRoutine(ctx context.Context) error {
	days, err := routine.Load(ws.cfg.RoutineFile)
	if err != nil {
		return eris.Wrap(err, "failed to load weekly routine")
	}

	seeded, err := ws.store.SeedRoutine(ctx, days)
	if err != nil {
		return eris.Wrap(err, "failed to seed weekly routine")
	}
	if seeded {
		ws.logger.Debug("seeded routine", zap.String("routine_file", ws.cfg.RoutineFile))
	}
	return nil
}

// Close releases the database and flushes logs
func (ws *workspace) Close() error {
	var err error
	if ws.store != nil {
		err = ws.store.Close()
	}
	if ws.closeLog != nil {
		if logErr := ws.closeLog(); err == nil {
			err = logErr
		}
	}
	return err
}

// today is the weekday index of the command's clock
func today() int {
	return models.DayIndex(clock())
}

// workoutDay is the weekday a workout's sets are tagged with
func workoutDay(workout *models.Workout) int {
	if workout.DayOfWeek != nil {
		return *workout.DayOfWeek
	}
	return models.DayIndex(workout.StartedAt.In(clock().Location()))
}

// resolveWorkout picks the workout a command acts on: an explicit ID, else the
// active workout, else the most recent workout today
func (ws *workspace) resolveWorkout(ctx context.Context, id int) (*models.Workout, error) {
	if id > 0 {
		return ws.store.GetWorkout(ctx, id)
	}

	workout, err := ws.store.GetActiveWorkout(ctx)
	if err != nil {
		return nil, err
	}
	if workout != nil {
		return workout, nil
	}

	workout, err = ws.store.GetTodayWorkout(ctx)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, eris.Wrap(db.ErrNotFound, "no workout today (start one with: titan start)")
	}
	return workout, nil
}

// startOrResume returns today's open workout, creating one named after the
// day's routine when there is none
func (ws *workspace) startOrResume(ctx context.Context, day int, name string) (*models.Workout, bool, error) {
	active, err := ws.store.GetActiveWorkout(ctx)
	if err != nil {
		return nil, false, err
	}

	if name == "" {
		plan, err := ws.store.GetRoutineForDay(ctx, day)
		if err != nil {
			return nil, false, err
		}
		if plan != nil {
			name = plan.RoutineName
		}
	}

	id, err := ws.store.GetOrResumeWorkout(ctx, day, name)
	if err != nil {
		return nil, false, err
	}

	workout, err := ws.store.GetWorkout(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return workout, active != nil && active.ID == id, nil
}
