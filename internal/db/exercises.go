package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const exerciseColumns = "id, name, created_at, last_used_at"

func scanExercise(row rowScanner) (*models.Exercise, error) {
	exercise := &models.Exercise{}
	if err := row.Scan(&exercise.ID, &exercise.Name, &exercise.CreatedAt, &exercise.LastUsedAt); err != nil {
		return nil, err
	}
	return exercise, nil
}

func collectExercises(rows *sql.Rows) ([]*models.Exercise, error) {
	defer rows.Close()

	exercises := []*models.Exercise{}
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, eris.Wrap(err, "failed to scan exercise row")
		}
		exercises = append(exercises, exercise)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "error iterating exercise rows")
	}
	return exercises, nil
}

// GetOrCreateExercise looks an exercise up by name, ignoring case and
// surrounding whitespace. A hit refreshes its last-used time; a miss creates it.
func (s *Store) GetOrCreateExercise(ctx context.Context, name string) (*models.Exercise, error) {
	var exercise *models.Exercise
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		exercise, err = s.getOrCreateExercise(ctx, tx, name, s.timestamp())
		return err
	})
	if err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *Store) getOrCreateExercise(ctx context.Context, q queryer, name string, now time.Time) (*models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, eris.Wrap(ErrValidation, "exercise name required")
	}
	key := models.NormalizeName(name)

	exercise, err := exerciseByKey(ctx, q, key)
	if err != nil {
		return nil, err
	}

	if exercise != nil {
		if _, err := q.ExecContext(ctx, "UPDATE exercises SET last_used_at = ? WHERE id = ?", now, exercise.ID); err != nil {
			return nil, eris.Wrapf(err, "failed to update exercise last_used_at for id: %d", exercise.ID)
		}
		exercise.LastUsedAt = now
		return exercise, nil
	}

	result, err := q.ExecContext(ctx,
		"INSERT INTO exercises (name, name_key, created_at, last_used_at) VALUES (?, ?, ?, ?)",
		name, key, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to insert exercise")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "failed to get last insert id")
	}

	s.logger.Debug("created exercise", zap.Int64("exercise_id", id), zap.String("name", name))
	return &models.Exercise{ID: int(id), Name: name, CreatedAt: now, LastUsedAt: now}, nil
}

// exerciseByKey returns the exercise with the normalized name, or nil
func exerciseByKey(ctx context.Context, q queryer, key string) (*models.Exercise, error) {
	exercise, err := scanExercise(q.QueryRowContext(ctx,
		"SELECT "+exerciseColumns+" FROM exercises WHERE name_key = ?",
		key,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to query exercise by name")
	}
	return exercise, nil
}

// GetExercise retrieves an exercise by name, ignoring case
func (s *Store) GetExercise(ctx context.Context, name string) (*models.Exercise, error) {
	exercise, err := exerciseByKey(ctx, s.db, models.NormalizeName(name))
	if err != nil {
		return nil, err
	}
	if exercise == nil {
		return nil, eris.Wrapf(ErrNotFound, "exercise not found: %s", name)
	}
	return exercise, nil
}

// SearchExercises returns exercises whose name contains query, ignoring case,
// most recently used first. An empty query returns the most recently used.
func (s *Store) SearchExercises(ctx context.Context, query string, limit int) ([]*models.Exercise, error) {
	key := models.NormalizeName(query)
	limit = limitOrDefault(limit)

	var (
		rows *sql.Rows
		err  error
	)
	if key == "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+exerciseColumns+" FROM exercises ORDER BY last_used_at DESC, id DESC LIMIT ?",
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+exerciseColumns+" FROM exercises WHERE instr(name_key, ?) > 0 ORDER BY last_used_at DESC, id DESC LIMIT ?",
			key, limit,
		)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to search exercises")
	}

	return collectExercises(rows)
}
