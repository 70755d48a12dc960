package db

import (
	"context"
	"time"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
)

// ExportData is a full snapshot of the store
type ExportData struct {
	ExportedAt time.Time                 `json:"exported_at"`
	Workouts   []*models.Workout         `json:"workouts"`
	Sets       []*models.ExerciseSet     `json:"sets"`
	Exercises  []*models.Exercise        `json:"exercises"`
	Routine    []*models.RoutineExercise `json:"routine"`
}

// Export reads every record in a single transaction so the snapshot is consistent
func (s *Store) Export(ctx context.Context) (*ExportData, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to begin export transaction")
	}
	//nolint:errcheck // Read-only transaction
	defer tx.Rollback()

	data := &ExportData{ExportedAt: s.timestamp()}

	rows, err := tx.QueryContext(ctx, "SELECT "+workoutColumns+" FROM workouts ORDER BY id")
	if err != nil {
		return nil, eris.Wrap(err, "failed to query workouts for export")
	}
	data.Workouts = []*models.Workout{}
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "failed to scan workout row")
		}
		data.Workouts = append(data.Workouts, workout)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, eris.Wrap(err, "error iterating workout rows")
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, "SELECT "+setColumns+" FROM exercise_sets ORDER BY id")
	if err != nil {
		return nil, eris.Wrap(err, "failed to query sets for export")
	}
	if data.Sets, err = collectSets(rows); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx, "SELECT "+exerciseColumns+" FROM exercises ORDER BY id")
	if err != nil {
		return nil, eris.Wrap(err, "failed to query exercises for export")
	}
	if data.Exercises, err = collectExercises(rows); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx,
		"SELECT id, day_of_week, routine_name, exercise_name, position FROM routine_exercises ORDER BY day_of_week, position, id",
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query routine for export")
	}
	defer rows.Close()

	data.Routine = []*models.RoutineExercise{}
	for rows.Next() {
		r := &models.RoutineExercise{}
		if err := rows.Scan(&r.ID, &r.DayOfWeek, &r.RoutineName, &r.ExerciseName, &r.Position); err != nil {
			return nil, eris.Wrap(err, "failed to scan routine row")
		}
		data.Routine = append(data.Routine, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "error iterating routine rows")
	}

	return data, nil
}
