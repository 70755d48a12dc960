package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const setColumns = "id, workout_id, exercise_name, set_number, weight, reps, day_of_week, created_at"

// SetUpdate names the fields of a set to change; nil fields are left alone
type SetUpdate struct {
	ExerciseName *string
	SetNumber    *int
	Weight       *float64
	Reps         *int
}

func scanSet(row rowScanner) (*models.ExerciseSet, error) {
	set := &models.ExerciseSet{}
	var day sql.NullInt64

	err := row.Scan(
		&set.ID,
		&set.WorkoutID,
		&set.ExerciseName,
		&set.SetNumber,
		&set.Weight,
		&set.Reps,
		&day,
		&set.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	set.DayOfWeek = dayPtr(day)
	return set, nil
}

func collectSets(rows *sql.Rows) ([]*models.ExerciseSet, error) {
	defer rows.Close()

	sets := []*models.ExerciseSet{}
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, eris.Wrap(err, "failed to scan set row")
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "error iterating set rows")
	}
	return sets, nil
}

func validateSetValues(weight float64, reps int) error {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return eris.Wrapf(ErrValidation, "weight must be a non-negative number, got %v", weight)
	}
	if reps < 0 {
		return eris.Wrapf(ErrValidation, "reps must be non-negative, got %d", reps)
	}
	return nil
}

// LogSet records a set for the named exercise, creating the exercise if it is
// new. The set number is one more than the sets already logged for the same
// workout and exercise; counting and inserting share one transaction.
func (s *Store) LogSet(ctx context.Context, workoutID int, exerciseName string, weight float64, reps int, day *int) (int, error) {
	if err := validateSetValues(weight, reps); err != nil {
		return 0, err
	}
	if err := validateDay(day); err != nil {
		return 0, err
	}

	var id int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireWorkout(ctx, tx, workoutID); err != nil {
			return err
		}

		now := s.timestamp()
		exercise, err := s.getOrCreateExercise(ctx, tx, exerciseName, now)
		if err != nil {
			return err
		}

		var existing int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM exercise_sets WHERE workout_id = ? AND name_key = ?",
			workoutID, models.NormalizeName(exercise.Name),
		).Scan(&existing)
		if err != nil {
			return eris.Wrap(err, "failed to count existing sets")
		}

		id, err = insertSet(ctx, tx, workoutID, strings.TrimSpace(exerciseName), existing+1, weight, reps, day, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("logged set",
		zap.Int("set_id", id),
		zap.Int("workout_id", workoutID),
		zap.String("exercise", exerciseName),
		zap.Float64("weight", weight),
		zap.Int("reps", reps),
	)
	return id, nil
}

func insertSet(ctx context.Context, q queryer, workoutID int, name string, setNumber int, weight float64, reps int, day *int, now time.Time) (int, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO exercise_sets
			(workout_id, exercise_name, name_key, set_number, weight, reps, day_of_week, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		workoutID, name, models.NormalizeName(name), setNumber, weight, reps, nullableDay(day), now,
	)
	if err != nil {
		return 0, eris.Wrap(err, "failed to insert set")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "failed to get last insert id")
	}
	return int(id), nil
}

// UpdateSet changes the weight and reps of a set
func (s *Store) UpdateSet(ctx context.Context, id int, weight float64, reps int) error {
	return s.UpdateSetFields(ctx, id, SetUpdate{Weight: &weight, Reps: &reps})
}

// UpdateSetFields changes the given fields of a set in place
func (s *Store) UpdateSetFields(ctx context.Context, id int, update SetUpdate) error {
	var (
		assignments []string
		args        []any
	)

	if update.Weight != nil {
		if err := validateSetValues(*update.Weight, 0); err != nil {
			return err
		}
		assignments = append(assignments, "weight = ?")
		args = append(args, *update.Weight)
	}
	if update.Reps != nil {
		if err := validateSetValues(0, *update.Reps); err != nil {
			return err
		}
		assignments = append(assignments, "reps = ?")
		args = append(args, *update.Reps)
	}
	if update.SetNumber != nil {
		if *update.SetNumber < 1 {
			return eris.Wrapf(ErrValidation, "set number must be positive, got %d", *update.SetNumber)
		}
		assignments = append(assignments, "set_number = ?")
		args = append(args, *update.SetNumber)
	}

	var name string
	if update.ExerciseName != nil {
		name = strings.TrimSpace(*update.ExerciseName)
		if name == "" {
			return eris.Wrap(ErrValidation, "exercise name required")
		}
		assignments = append(assignments, "exercise_name = ?", "name_key = ?")
		args = append(args, name, models.NormalizeName(name))
	}

	if len(assignments) == 0 {
		return eris.Wrap(ErrValidation, "no set fields to update")
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if name != "" {
			if _, err := s.getOrCreateExercise(ctx, tx, name, s.timestamp()); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx,
			"UPDATE exercise_sets SET "+strings.Join(assignments, ", ")+" WHERE id = ?",
			append(args, id)...,
		)
		if err != nil {
			return eris.Wrapf(err, "failed to update set with id: %d", id)
		}
		return requireAffected(result, "set", id)
	})
}

// DeleteSet removes a single set
func (s *Store) DeleteSet(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM exercise_sets WHERE id = ?", id)
	if err != nil {
		return storageError(err, fmt.Sprintf("failed to delete set with id: %d", id))
	}
	if err := requireAffected(result, "set", id); err != nil {
		return err
	}

	s.logger.Debug("deleted set", zap.Int("set_id", id))
	return nil
}

// GetSet retrieves a set by ID
func (s *Store) GetSet(ctx context.Context, id int) (*models.ExerciseSet, error) {
	set, err := scanSet(s.db.QueryRowContext(ctx,
		"SELECT "+setColumns+" FROM exercise_sets WHERE id = ?",
		id,
	))
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "set not found with id: %d", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to query set by id")
	}
	return set, nil
}

// GetSetsForWorkout returns every set of a workout in the order they were logged
func (s *Store) GetSetsForWorkout(ctx context.Context, workoutID int) ([]*models.ExerciseSet, error) {
	return setsForWorkout(ctx, s.db, workoutID)
}

func setsForWorkout(ctx context.Context, q queryer, workoutID int) ([]*models.ExerciseSet, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+setColumns+" FROM exercise_sets WHERE workout_id = ? ORDER BY created_at, id",
		workoutID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query sets by workout")
	}
	return collectSets(rows)
}
