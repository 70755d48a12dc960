package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SaveWorkout persists the edited state of a whole workout and marks it
// complete, all in one transaction:
//
//  1. persisted sets whose IDs no longer appear in blocks are deleted
//  2. every block's exercise is created if missing
//  3. each set is numbered by its position in its block, then updated by ID
//     or inserted when it has no ID (new rows are tagged with day)
//  4. the workout's completion time is set
//
// If any step fails nothing is written.
func (s *Store) SaveWorkout(ctx context.Context, workoutID int, blocks []models.ExerciseBlock, day *int) error {
	if err := validateBlocks(blocks); err != nil {
		return err
	}
	if err := validateDay(day); err != nil {
		return err
	}

	var deleted, updated, inserted int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireWorkout(ctx, tx, workoutID); err != nil {
			return err
		}

		persisted, err := setsForWorkout(ctx, tx, workoutID)
		if err != nil {
			return err
		}

		kept := make(map[int]bool)
		for _, block := range blocks {
			for _, draft := range block.Sets {
				if draft.ID != 0 {
					kept[draft.ID] = true
				}
			}
		}

		owned := make(map[int]bool, len(persisted))
		for _, set := range persisted {
			owned[set.ID] = true
			if kept[set.ID] {
				continue
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM exercise_sets WHERE id = ?", set.ID); err != nil {
				return eris.Wrapf(err, "failed to delete removed set with id: %d", set.ID)
			}
			deleted++
		}

		now := s.timestamp()
		for _, block := range blocks {
			name := strings.TrimSpace(block.Name)
			if _, err := s.getOrCreateExercise(ctx, tx, name, now); err != nil {
				return err
			}

			for i, draft := range block.Sets {
				setNumber := i + 1

				if draft.ID == 0 {
					if _, err := insertSet(ctx, tx, workoutID, name, setNumber, draft.Weight, draft.Reps, day, now); err != nil {
						return err
					}
					inserted++
					continue
				}

				if !owned[draft.ID] {
					return eris.Wrapf(ErrNotFound, "set %d does not belong to workout %d", draft.ID, workoutID)
				}

				result, err := tx.ExecContext(ctx, `
					UPDATE exercise_sets
					SET exercise_name = ?, name_key = ?, set_number = ?, weight = ?, reps = ?
					WHERE id = ? AND workout_id = ?
				`, name, models.NormalizeName(name), setNumber, draft.Weight, draft.Reps, draft.ID, workoutID)
				if err != nil {
					return eris.Wrapf(err, "failed to update set with id: %d", draft.ID)
				}
				if err := requireAffected(result, "set", draft.ID); err != nil {
					return err
				}
				updated++
			}
		}

		return s.finishWorkout(ctx, tx, workoutID)
	})
	if err != nil {
		s.logger.Warn("workout save rolled back", zap.Int("workout_id", workoutID), zap.Error(err))
		return eris.Wrapf(err, "failed to save workout %d", workoutID)
	}

	s.logger.Info("saved workout",
		zap.Int("workout_id", workoutID),
		zap.Int("deleted", deleted),
		zap.Int("updated", updated),
		zap.Int("inserted", inserted),
	)
	return nil
}

// validateBlocks checks the in-memory workout state before any write
func validateBlocks(blocks []models.ExerciseBlock) error {
	names := make(map[string]bool, len(blocks))
	ids := make(map[int]bool)

	for _, block := range blocks {
		key := models.NormalizeName(block.Name)
		if key == "" {
			return eris.Wrap(ErrValidation, "exercise name required")
		}
		if names[key] {
			return eris.Wrapf(ErrValidation, "exercise %q appears in more than one block", block.Name)
		}
		names[key] = true

		for _, draft := range block.Sets {
			if err := validateSetValues(draft.Weight, draft.Reps); err != nil {
				return err
			}
			if draft.ID < 0 {
				return eris.Wrapf(ErrValidation, "invalid set id %d", draft.ID)
			}
			if draft.ID == 0 {
				continue
			}
			if ids[draft.ID] {
				return eris.Wrapf(ErrValidation, "set %d appears more than once", draft.ID)
			}
			ids[draft.ID] = true
		}
	}
	return nil
}
