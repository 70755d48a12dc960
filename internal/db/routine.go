package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SeedRoutine stores the weekly routine reference data the first time it is
// called. It reports whether rows were written; once any routine row exists
// it does nothing.
func (s *Store) SeedRoutine(ctx context.Context, days []models.DayRoutine) (bool, error) {
	for _, day := range days {
		if !models.ValidDay(day.DayOfWeek) {
			return false, eris.Wrapf(ErrValidation, "routine day must be between 0 and 6, got %d", day.DayOfWeek)
		}
		if strings.TrimSpace(day.RoutineName) == "" {
			return false, eris.Wrapf(ErrValidation, "routine name required for day %d", day.DayOfWeek)
		}
	}

	seeded := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM routine_exercises").Scan(&existing); err != nil {
			return eris.Wrap(err, "failed to count routine rows")
		}
		if existing > 0 {
			return nil
		}

		for _, day := range days {
			for position, name := range day.Exercises {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				_, err := tx.ExecContext(ctx,
					"INSERT INTO routine_exercises (day_of_week, routine_name, exercise_name, position) VALUES (?, ?, ?, ?)",
					day.DayOfWeek, strings.TrimSpace(day.RoutineName), name, position,
				)
				if err != nil {
					return eris.Wrapf(err, "failed to insert routine exercise for day %d", day.DayOfWeek)
				}
				seeded = true
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		s.logger.Info("seeded weekly routine", zap.Int("days", len(days)))
	}
	return seeded, nil
}

// GetRoutineForDay returns the routine planned for a weekday, or nil for a rest day
func (s *Store) GetRoutineForDay(ctx context.Context, day int) (*models.DayRoutine, error) {
	if err := validateDay(&day); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT routine_name, exercise_name FROM routine_exercises WHERE day_of_week = ? ORDER BY position, id",
		day,
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query routine for day")
	}
	defer rows.Close()

	var routine *models.DayRoutine
	for rows.Next() {
		var routineName, exerciseName string
		if err := rows.Scan(&routineName, &exerciseName); err != nil {
			return nil, eris.Wrap(err, "failed to scan routine row")
		}
		if routine == nil {
			routine = &models.DayRoutine{DayOfWeek: day, RoutineName: routineName}
		}
		routine.Exercises = append(routine.Exercises, exerciseName)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "error iterating routine rows")
	}

	return routine, nil
}

// GetWeeklyRoutine returns the routine of every day that has one, Monday first
func (s *Store) GetWeeklyRoutine(ctx context.Context) ([]*models.DayRoutine, error) {
	week := []*models.DayRoutine{}
	for day := 0; day < 7; day++ {
		routine, err := s.GetRoutineForDay(ctx, day)
		if err != nil {
			return nil, err
		}
		if routine != nil {
			week = append(week, routine)
		}
	}
	return week, nil
}
