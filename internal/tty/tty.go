package tty

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin is a terminal
func IsInteractive() bool {
	return IsTerminal(os.Stdin)
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Confirm asks a yes/no question and reads the answer from in. Anything other
// than y or yes is a no.
func Confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, eris.Wrap(err, "failed to read confirmation")
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
