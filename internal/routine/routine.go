package routine

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultRoutine []byte

// RestDayName is shown for days without a routine
const RestDayName = "Rest Day"

// routineFile represents the YAML routine file structure
type routineFile struct {
	Days []models.DayRoutine `yaml:"days"`
}

// Default returns the built-in weekly routine
func Default() ([]models.DayRoutine, error) {
	days, err := Parse(defaultRoutine)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse built-in routine")
	}
	return days, nil
}

// Load reads a routine file, falling back to the built-in routine when path is empty
func Load(path string) ([]models.DayRoutine, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read routine file: %s", path)
	}

	days, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid routine file: %s", path)
	}
	return days, nil
}

// Parse decodes and validates a routine document. The result is sorted by day.
func Parse(data []byte) ([]models.DayRoutine, error) {
	var file routineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "failed to parse routine YAML")
	}

	for i := range file.Days {
		day := &file.Days[i]
		day.RoutineName = strings.TrimSpace(day.RoutineName)

		exercises := make([]string, 0, len(day.Exercises))
		for _, name := range day.Exercises {
			if name = strings.TrimSpace(name); name != "" {
				exercises = append(exercises, name)
			}
		}
		day.Exercises = exercises
	}

	if err := Validate(file.Days); err != nil {
		return nil, err
	}

	sort.SliceStable(file.Days, func(i, j int) bool {
		return file.Days[i].DayOfWeek < file.Days[j].DayOfWeek
	})
	return file.Days, nil
}

// Validate checks that every day is in range, listed once, named, and has no
// exercise twice
func Validate(days []models.DayRoutine) error {
	seen := make(map[int]bool, len(days))

	for _, day := range days {
		if !models.ValidDay(day.DayOfWeek) {
			return eris.Errorf("invalid day: %d (must be 0 for Monday through 6 for Sunday)", day.DayOfWeek)
		}
		if seen[day.DayOfWeek] {
			return eris.Errorf("%s is listed more than once", models.DayName(day.DayOfWeek))
		}
		seen[day.DayOfWeek] = true

		if strings.TrimSpace(day.RoutineName) == "" {
			return eris.Errorf("%s has no routine name", models.DayName(day.DayOfWeek))
		}
		if len(day.Exercises) == 0 {
			return eris.Errorf("%s (%s) has no exercises", models.DayName(day.DayOfWeek), day.RoutineName)
		}

		names := make(map[string]bool, len(day.Exercises))
		for _, name := range day.Exercises {
			key := models.NormalizeName(name)
			if names[key] {
				return eris.Errorf("%s lists %q more than once", models.DayName(day.DayOfWeek), name)
			}
			names[key] = true
		}
	}

	return nil
}

// Week expands the stored routine to all seven days, filling gaps with rest days
func Week(days []*models.DayRoutine) []models.DayRoutine {
	week := make([]models.DayRoutine, 7)
	for i := range week {
		week[i] = models.DayRoutine{DayOfWeek: i, RoutineName: RestDayName, Exercises: []string{}}
	}
	for _, day := range days {
		if day != nil && models.ValidDay(day.DayOfWeek) {
			week[day.DayOfWeek] = *day
		}
	}
	return week
}

// IsRestDay reports whether a day has nothing planned
func IsRestDay(day models.DayRoutine) bool {
	return day.RoutineName == RestDayName || len(day.Exercises) == 0
}
