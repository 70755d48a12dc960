package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes user-facing output with semantic styling. Write errors are
// ignored; the terminal is the only consumer.
type Printer interface {
	Print(a ...any)
	Println(a ...any)
	Printf(format string, a ...any)

	Success(msg string)
	Error(msg string)
	Warning(msg string)
	Info(msg string)

	Successf(format string, a ...any)
	Errorf(format string, a ...any)
	Warningf(format string, a ...any)
	Infof(format string, a ...any)

	// Heading prints a bold section title followed by a newline
	Heading(title string)

	Bold(text string) string
	Faint(text string) string
	SuccessText(text string) string
	ErrorText(text string) string
	WarningText(text string) string
	InfoText(text string) string
}

type styles struct {
	success func(a ...any) string
	err     func(a ...any) string
	warning func(a ...any) string
	info    func(a ...any) string
	bold    func(a ...any) string
	faint   func(a ...any) string
}

type printer struct {
	out io.Writer
	styles
}

// New creates a Printer writing to w
func New(w io.Writer) Printer {
	return &printer{
		out: w,
		styles: styles{
			success: color.New(color.FgGreen).SprintFunc(),
			err:     color.New(color.FgRed).SprintFunc(),
			warning: color.New(color.FgYellow).SprintFunc(),
			info:    color.New(color.FgCyan).SprintFunc(),
			bold:    color.New(color.Bold).SprintFunc(),
			faint:   color.New(color.Faint).SprintFunc(),
		},
	}
}

// NewStderr creates a Printer for status messages
func NewStderr() Printer {
	return New(os.Stderr)
}

// NewStdout creates a Printer for results that may be piped
func NewStdout() Printer {
	return New(os.Stdout)
}

func (p *printer) Print(a ...any) {
	_, _ = fmt.Fprint(p.out, a...)
}

func (p *printer) Println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

func (p *printer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

func (p *printer) status(icon string, style func(a ...any) string, msg string) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", style(icon), msg)
}

func (p *printer) Success(msg string) { p.status("✓", p.success, msg) }
func (p *printer) Error(msg string)   { p.status("✗", p.err, msg) }
func (p *printer) Warning(msg string) { p.status("⚠", p.warning, msg) }
func (p *printer) Info(msg string)    { p.status("ℹ", p.info, msg) }

func (p *printer) Successf(format string, a ...any) { p.Success(fmt.Sprintf(format, a...)) }
func (p *printer) Errorf(format string, a ...any)   { p.Error(fmt.Sprintf(format, a...)) }
func (p *printer) Warningf(format string, a ...any) { p.Warning(fmt.Sprintf(format, a...)) }
func (p *printer) Infof(format string, a ...any)    { p.Info(fmt.Sprintf(format, a...)) }

func (p *printer) Heading(title string) {
	_, _ = fmt.Fprintln(p.out, p.bold(title))
}

func (p *printer) Bold(text string) string        { return p.bold(text) }
func (p *printer) Faint(text string) string       { return p.faint(text) }
func (p *printer) SuccessText(text string) string { return p.success(text) }
func (p *printer) ErrorText(text string) string   { return p.err(text) }
func (p *printer) WarningText(text string) string { return p.warning(text) }
func (p *printer) InfoText(text string) string    { return p.info(text) }
