package fuzzy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Finder represents the type of fuzzy finder available
type Finder string

const (
	FinderFzf  Finder = "fzf"
	FinderPeco Finder = "peco"
	FinderNone Finder = "none"
)

// ErrCancelled is returned when the user backs out of a selection
var ErrCancelled = eris.New("selection cancelled")

// DetectFuzzyFinder detects which fuzzy finder is available on the system.
// Checks in order: fzf, peco
func DetectFuzzyFinder() (Finder, error) {
	if _, err := exec.LookPath("fzf"); err == nil {
		return FinderFzf, nil
	}

	if _, err := exec.LookPath("peco"); err == nil {
		return FinderPeco, nil
	}

	return FinderNone, eris.New("no fuzzy finder found (install fzf or peco)")
}

// ResolveFinder turns the configured preference ("auto", "fzf", "peco") into
// an installed finder, or FinderNone when it is unavailable
func ResolveFinder(preference string) Finder {
	switch Finder(preference) {
	case FinderFzf, FinderPeco:
		if _, err := exec.LookPath(preference); err == nil {
			return Finder(preference)
		}
		return FinderNone
	default:
		finder, _ := DetectFuzzyFinder()
		return finder
	}
}

// Picker chooses an exercise name from recent ones, or accepts a new name
type Picker struct {
	Finder Finder
	In     io.Reader
	Out    io.Writer
}

// NewPicker creates a picker on the process's terminal using the configured finder
func NewPicker(preference string) *Picker {
	return &Picker{Finder: ResolveFinder(preference), In: os.Stdin, Out: os.Stderr}
}

// SelectExercise lets the user pick one of names. Typing a name that is not in
// the list returns it as-is so new exercises can be started from the picker.
func (p *Picker) SelectExercise(ctx context.Context, names []string) (string, error) {
	switch p.Finder {
	case FinderFzf:
		// --print-query emits the typed query first, then the selection
		return p.run(ctx, names, "fzf", "--height", "40%", "--reverse", "--border", "--print-query", "--prompt", "exercise> ")
	case FinderPeco:
		return p.run(ctx, names, "peco", "--prompt", "exercise>")
	default:
		return p.prompt(names)
	}
}

func (p *Picker) run(ctx context.Context, names []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(strings.Join(names, "\n"))
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		switch {
		case ok && exitErr.ExitCode() == 130:
			return "", ErrCancelled
		case ok && exitErr.ExitCode() == 1 && name == string(FinderFzf):
			// No match: fall through to the printed query
		default:
			return "", eris.Wrapf(err, "%s failed", name)
		}
	}

	return parseSelection(string(output))
}

// parseSelection picks the selected line, falling back to the typed query
func parseSelection(output string) (string, error) {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if selected := strings.TrimSpace(lines[i]); selected != "" {
			return selected, nil
		}
	}
	return "", ErrCancelled
}

// prompt is the fallback when no fuzzy finder is installed: a numbered list
// that also accepts a typed name
func (p *Picker) prompt(names []string) (string, error) {
	if len(names) > 0 {
		fmt.Fprintln(p.Out, "Recent exercises:")
		for i, name := range names {
			fmt.Fprintf(p.Out, "%3d. %s\n", i+1, name)
		}
		fmt.Fprintf(p.Out, "\nEnter number (1-%d) or a new exercise name: ", len(names))
	} else {
		fmt.Fprint(p.Out, "Exercise name: ")
	}

	input, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", eris.Wrap(err, "failed to read input")
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrCancelled
	}

	if selection, err := strconv.Atoi(input); err == nil {
		if selection < 1 || selection > len(names) {
			return "", eris.Errorf("selection out of range (1-%d)", len(names))
		}
		return names[selection-1], nil
	}

	return input, nil
}
