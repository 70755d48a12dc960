package db

import (
	"context"
	"database/sql"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// GetPreviousSetsForExercise returns the complete set list of the last session
// that included the exercise, ignoring excludeWorkoutID (pass 0 to exclude
// nothing). The last session is the workout owning the most recently logged
// matching set; its sets are returned ordered by set number.
func (s *Store) GetPreviousSetsForExercise(ctx context.Context, exerciseName string, excludeWorkoutID int) ([]*models.ExerciseSet, error) {
	key := models.NormalizeName(exerciseName)
	if key == "" {
		return []*models.ExerciseSet{}, nil
	}

	var lastWorkoutID int
	err := s.db.QueryRowContext(ctx, `
		SELECT workout_id FROM exercise_sets
		WHERE name_key = ? AND workout_id != ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, key, excludeWorkoutID).Scan(&lastWorkoutID)
	if err == sql.ErrNoRows {
		return []*models.ExerciseSet{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to query last workout for exercise")
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+setColumns+" FROM exercise_sets WHERE workout_id = ? AND name_key = ? ORDER BY set_number, id",
		lastWorkoutID, key,
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query previous sets")
	}

	return collectSets(rows)
}

// GetLastSetForExercise returns the final set of the previous session for the
// exercise, or nil if the exercise was never logged outside excludeWorkoutID
func (s *Store) GetLastSetForExercise(ctx context.Context, exerciseName string, excludeWorkoutID int) (*models.ExerciseSet, error) {
	sets, err := s.GetPreviousSetsForExercise(ctx, exerciseName, excludeWorkoutID)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}
	return sets[len(sets)-1], nil
}

// GetExercisesForDay recalls which exercises belong on a weekday, using the
// store's day policy
func (s *Store) GetExercisesForDay(ctx context.Context, day int, limit int) ([]*models.Exercise, error) {
	if err := validateDay(&day); err != nil {
		return nil, err
	}
	limit = limitOrDefault(limit)

	s.logger.Debug("recalling exercises for day", zap.Int("day", day), zap.String("policy", string(s.dayPolicy)))
	if s.dayPolicy == DayPolicyRecency {
		return s.exercisesForDayByRecency(ctx, day, limit)
	}
	return s.exercisesForDayFromLatestSession(ctx, day, limit)
}

// exercisesForDayFromLatestSession returns the exercises of the most recently
// completed workout with sets tagged for day, in the order they first appeared
func (s *Store) exercisesForDayFromLatestSession(ctx context.Context, day int, limit int) ([]*models.Exercise, error) {
	var workoutID int
	err := s.db.QueryRowContext(ctx, `
		SELECT w.id FROM workouts w
		WHERE w.completed_at IS NOT NULL
			AND EXISTS (SELECT 1 FROM exercise_sets s WHERE s.workout_id = w.id AND s.day_of_week = ?)
		ORDER BY w.completed_at DESC, w.id DESC
		LIMIT 1
	`, day).Scan(&workoutID)
	if err == sql.ErrNoRows {
		return []*models.Exercise{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to query latest completed workout for day")
	}

	sets, err := setsForWorkout(ctx, s.db, workoutID)
	if err != nil {
		return nil, err
	}

	exercises := []*models.Exercise{}
	seen := make(map[string]bool)
	for _, set := range sets {
		if len(exercises) >= limit {
			break
		}

		key := models.NormalizeName(set.ExerciseName)
		if seen[key] {
			continue
		}
		seen[key] = true

		exercise, err := exerciseByKey(ctx, s.db, key)
		if err != nil {
			return nil, err
		}
		if exercise == nil {
			// Sets reference exercises by name only
			exercise = &models.Exercise{Name: set.ExerciseName, CreatedAt: set.CreatedAt, LastUsedAt: set.CreatedAt}
		}
		exercises = append(exercises, exercise)
	}

	return exercises, nil
}

// exercisesForDayByRecency returns every exercise logged on day, ordered by
// when it was last logged on that day
func (s *Store) exercisesForDayByRecency(ctx context.Context, day int, limit int) ([]*models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.name, e.created_at, e.last_used_at
		FROM exercise_sets s
		JOIN exercises e ON e.name_key = s.name_key
		WHERE s.day_of_week = ?
		GROUP BY e.id
		ORDER BY MAX(s.created_at) DESC, e.id DESC
		LIMIT ?
	`, day, limit)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query exercises for day")
	}

	return collectExercises(rows)
}
