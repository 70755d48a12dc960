package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format stored on workouts
const DateLayout = "2006-01-02"

// Workout represents one training session on a given date
type Workout struct {
	ID          int        `json:"id"`
	Date        string     `json:"date"`                   // Local calendar date, YYYY-MM-DD
	Name        string     `json:"name"`                   // Display or routine name
	DayOfWeek   *int       `json:"day_of_week,omitempty"`  // Weekday the session was started for (0 = Monday)
	StartedAt   time.Time  `json:"started_at"`             // When the session started
	CompletedAt *time.Time `json:"completed_at,omitempty"` // Nil while the session is in progress
}

// IsComplete reports whether the workout has been finished
func (w *Workout) IsComplete() bool {
	return w.CompletedAt != nil
}

// ExerciseSet represents one logged weight x reps attempt within a workout
type ExerciseSet struct {
	ID           int       `json:"id"`
	WorkoutID    int       `json:"workout_id"`            // Foreign key to Workout
	ExerciseName string    `json:"exercise_name"`         // Free text, matched case-insensitively
	SetNumber    int       `json:"set_number"`            // 1-based ordinal within workout + exercise
	Weight       float64   `json:"weight"`                // Non-negative, fractional
	Reps         int       `json:"reps"`                  // Non-negative
	DayOfWeek    *int      `json:"day_of_week,omitempty"` // Weekday tag used for recall (0 = Monday)
	CreatedAt    time.Time `json:"created_at"`
}

// Exercise is a distinct movement name, deduplicated case-insensitively
type Exercise struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// RoutineExercise is one row of the static weekly routine
type RoutineExercise struct {
	ID           int    `json:"id"`
	DayOfWeek    int    `json:"day_of_week"`
	RoutineName  string `json:"routine_name"`
	ExerciseName string `json:"exercise_name"`
	Position     int    `json:"position"`
}

// DayRoutine groups the routine rows of one weekday
type DayRoutine struct {
	DayOfWeek   int      `json:"day" yaml:"day"`
	RoutineName string   `json:"name" yaml:"name"`
	Exercises   []string `json:"exercises" yaml:"exercises"`
}

// WorkoutSummary is a workout with its logged set count, used for history listings
type WorkoutSummary struct {
	Workout
	TotalSets int `json:"total_sets"`
}

// Stats holds the aggregate counts shown on the progress screen
type Stats struct {
	Workouts  int `json:"workouts"`
	Sets      int `json:"sets"`
	Exercises int `json:"exercises"`
}

// SetDraft is an in-memory set row handed to the whole-workout save.
// ID is zero for rows that have never been persisted.
type SetDraft struct {
	ID     int     `json:"id,omitempty" yaml:"id,omitempty"`
	Weight float64 `json:"weight" yaml:"weight"`
	Reps   int     `json:"reps" yaml:"reps"`
}

// ExerciseBlock is one exercise and its ordered set rows as edited by the user
type ExerciseBlock struct {
	Name string     `json:"name" yaml:"name"`
	Sets []SetDraft `json:"sets" yaml:"sets"`
}

// NormalizeName returns the identity key for an exercise name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DayIndex converts a time to a weekday index where Monday is 0 and Sunday is 6
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ValidDay reports whether day is a weekday index
func ValidDay(day int) bool {
	return day >= 0 && day <= 6
}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English name of a weekday index
func DayName(day int) string {
	if !ValidDay(day) {
		return "Unknown"
	}
	return dayNames[day]
}
