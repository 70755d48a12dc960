package db

import (
	"context"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// GetTotalWorkouts counts every workout, finished or not
func (s *Store) GetTotalWorkouts(ctx context.Context) (int, error) {
	return s.count(ctx, "workouts")
}

// GetTotalSets counts every logged set
func (s *Store) GetTotalSets(ctx context.Context) (int, error) {
	return s.count(ctx, "exercise_sets")
}

// GetExerciseCount counts distinct exercises
func (s *Store) GetExerciseCount(ctx context.Context) (int, error) {
	return s.count(ctx, "exercises")
}

// GetStats runs the three aggregate counts together
func (s *Store) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.GetTotalWorkouts(ctx)
		stats.Workouts = n
		return err
	})
	g.Go(func() error {
		n, err := s.GetTotalSets(ctx)
		stats.Sets = n
		return err
	})
	g.Go(func() error {
		n, err := s.GetExerciseCount(ctx)
		stats.Exercises = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// count returns the row count of a table; table is always a package constant
func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "failed to count %s", table)
	}
	return n, nil
}
