package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultWorkoutName is used when a workout is started without a name
const DefaultWorkoutName = "Workout"

const workoutColumns = "id, date, name, day_of_week, started_at, completed_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*models.Workout, error) {
	workout := &models.Workout{}
	var day sql.NullInt64
	var completedAt sql.NullTime

	err := row.Scan(&workout.ID, &workout.Date, &workout.Name, &day, &workout.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	workout.DayOfWeek = dayPtr(day)
	if completedAt.Valid {
		workout.CompletedAt = &completedAt.Time
	}
	return workout, nil
}

// StartWorkout creates a workout dated today with no completion timestamp
func (s *Store) StartWorkout(ctx context.Context, name string) (int, error) {
	return s.createWorkout(ctx, s.db, name, nil)
}

func (s *Store) createWorkout(ctx context.Context, q queryer, name string, day *int) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultWorkoutName
	}

	result, err := q.ExecContext(ctx,
		"INSERT INTO workouts (date, name, day_of_week, started_at) VALUES (?, ?, ?, ?)",
		s.today(), name, nullableDay(day), s.timestamp(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "failed to insert workout")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "failed to get last insert id")
	}

	s.logger.Debug("started workout", zap.Int64("workout_id", id), zap.String("name", name))
	return int(id), nil
}

// GetOrResumeWorkout returns today's incomplete workout if there is one,
// otherwise it starts a new workout tagged with day
func (s *Store) GetOrResumeWorkout(ctx context.Context, day int, name string) (int, error) {
	if err := validateDay(&day); err != nil {
		return 0, err
	}

	var id int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		active, err := s.activeWorkout(ctx, tx)
		if err != nil {
			return err
		}
		if active != nil {
			id = active.ID
			s.logger.Debug("resumed workout", zap.Int("workout_id", id))
			return nil
		}

		id, err = s.createWorkout(ctx, tx, name, &day)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetActiveWorkout returns today's incomplete workout, or nil if none exists
func (s *Store) GetActiveWorkout(ctx context.Context) (*models.Workout, error) {
	return s.activeWorkout(ctx, s.db)
}

func (s *Store) activeWorkout(ctx context.Context, q queryer) (*models.Workout, error) {
	workout, err := scanWorkout(q.QueryRowContext(ctx,
		"SELECT "+workoutColumns+" FROM workouts WHERE date = ? AND completed_at IS NULL ORDER BY started_at DESC, id DESC LIMIT 1",
		s.today(),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to query active workout")
	}
	return workout, nil
}

// GetTodayWorkout returns the most recently started workout dated today,
// complete or not, or nil if none exists
func (s *Store) GetTodayWorkout(ctx context.Context) (*models.Workout, error) {
	workout, err := scanWorkout(s.db.QueryRowContext(ctx,
		"SELECT "+workoutColumns+" FROM workouts WHERE date = ? ORDER BY started_at DESC, id DESC LIMIT 1",
		s.today(),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to query today's workout")
	}
	return workout, nil
}

// GetWorkout retrieves a workout by ID
func (s *Store) GetWorkout(ctx context.Context, id int) (*models.Workout, error) {
	workout, err := scanWorkout(s.db.QueryRowContext(ctx,
		"SELECT "+workoutColumns+" FROM workouts WHERE id = ?",
		id,
	))
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "workout not found with id: %d", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to query workout by id")
	}
	return workout, nil
}

// GetWorkoutHistory returns the most recently started workouts with their set counts
func (s *Store) GetWorkoutHistory(ctx context.Context, limit int) ([]*models.WorkoutSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.date, w.name, w.day_of_week, w.started_at, w.completed_at,
			(SELECT COUNT(*) FROM exercise_sets s WHERE s.workout_id = w.id)
		FROM workouts w
		ORDER BY w.started_at DESC, w.id DESC
		LIMIT ?
	`, limitOrDefault(limit))
	if err != nil {
		return nil, eris.Wrap(err, "failed to query workout history")
	}
	defer rows.Close()

	history := []*models.WorkoutSummary{}
	for rows.Next() {
		summary := &models.WorkoutSummary{}
		var day sql.NullInt64
		var completedAt sql.NullTime

		err := rows.Scan(
			&summary.ID,
			&summary.Date,
			&summary.Name,
			&day,
			&summary.StartedAt,
			&completedAt,
			&summary.TotalSets,
		)
		if err != nil {
			return nil, eris.Wrap(err, "failed to scan workout row")
		}

		summary.DayOfWeek = dayPtr(day)
		if completedAt.Valid {
			summary.CompletedAt = &completedAt.Time
		}
		history = append(history, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "error iterating workout rows")
	}

	return history, nil
}

// RenameWorkout changes the display name of a workout
func (s *Store) RenameWorkout(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return eris.Wrap(ErrValidation, "workout name required")
	}

	result, err := s.db.ExecContext(ctx, "UPDATE workouts SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return storageError(err, fmt.Sprintf("failed to rename workout with id: %d", id))
	}
	return requireAffected(result, "workout", id)
}

// FinishWorkout stamps the workout's completion time. Calling it again
// overwrites the previous timestamp.
func (s *Store) FinishWorkout(ctx context.Context, id int) error {
	if err := s.finishWorkout(ctx, s.db, id); err != nil {
		return err
	}
	s.logger.Info("finished workout", zap.Int("workout_id", id))
	return nil
}

func (s *Store) finishWorkout(ctx context.Context, q queryer, id int) error {
	result, err := q.ExecContext(ctx, "UPDATE workouts SET completed_at = ? WHERE id = ?", s.timestamp(), id)
	if err != nil {
		return storageError(err, fmt.Sprintf("failed to finish workout with id: %d", id))
	}
	return requireAffected(result, "workout", id)
}

// requireWorkout returns ErrNotFound when the workout does not exist
func requireWorkout(ctx context.Context, q queryer, id int) error {
	var count int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM workouts WHERE id = ?", id).Scan(&count); err != nil {
		return eris.Wrap(err, "failed to query workout existence")
	}
	if count == 0 {
		return eris.Wrapf(ErrNotFound, "workout not found with id: %d", id)
	}
	return nil
}

// requireAffected maps a zero-row update or delete to ErrNotFound
func requireAffected(result sql.Result, kind string, id int) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return eris.Wrapf(ErrNotFound, "%s not found with id: %d", kind, id)
	}
	return nil
}
