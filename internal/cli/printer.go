package cli

// This file implements terminal output helpers: colored text, tables,
// section headings, and spinners for longer operations.

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Printer writes human-readable CLI output.
type Printer struct {
	// Quiet suppresses everything except tables and explicit Printf output.
	Quiet bool
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

// DefaultPrinter writes to stdout.
var DefaultPrinter = &Printer{}

func (p *Printer) writer() io.Writer {
	if p.Writer != nil {
		return p.Writer
	}
	return os.Stdout
}

// interactive reports whether output goes to a terminal.
func (p *Printer) interactive() bool {
	f, ok := p.writer().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func Green(s string) string  { return pterm.Green(s) }
func Yellow(s string) string { return pterm.Yellow(s) }
func Red(s string) string    { return pterm.Red(s) }
func Cyan(s string) string   { return pterm.Cyan(s) }

// Section prints a heading.
func (p *Printer) Section(title string) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.writer(), "\n%s\n", pterm.Bold.Sprint(Cyan(title)))
}

// Step prints a progress line.
func (p *Printer) Step(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.writer(), "%s %s\n", Cyan("→"), msg)
}

func (p *Printer) Info(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.writer(), "%s %s\n", Cyan("i"), msg)
}

func (p *Printer) Success(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.writer(), "%s %s\n", Green("✓"), msg)
}

func (p *Printer) Warn(msg string) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.writer(), "%s %s\n", Yellow("!"), msg)
}

// Error is printed even in quiet mode.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.writer(), "%s %s\n", Red("✗"), msg)
}

func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.writer(), format, args...)
}

// Table prints data with the first row as header.
func (p *Printer) Table(data [][]string) {
	p.table(data, false)
}

// TableBoxed is Table with a border.
func (p *Printer) TableBoxed(data [][]string) {
	p.table(data, true)
}

func (p *Printer) table(data [][]string, boxed bool) {
	if len(data) == 0 {
		return
	}
	table := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(data))
	if boxed {
		table = table.WithBoxed()
	}
	out, err := table.Srender()
	if err != nil {
		p.Error(fmt.Sprintf("render table: %v", err))
		return
	}
	fmt.Fprintln(p.writer(), out)
}

// SpinnerStart shows a spinner on interactive terminals and returns the
// function that stops it with a final message.
func (p *Printer) SpinnerStart(msg string) func(ok bool, final string) {
	if p.Quiet {
		return func(bool, string) {}
	}
	if !p.interactive() {
		p.Step(msg)
		return func(ok bool, final string) {
			if ok {
				p.Success(final)
			} else {
				p.Error(final)
			}
		}
	}
	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(msg)
	if err != nil {
		p.Step(msg)
	}
	return func(ok bool, final string) {
		if spinner != nil {
			_ = spinner.Stop()
		}
		if ok {
			p.Success(final)
		} else {
			p.Error(final)
		}
	}
}

// Table prints data using DefaultPrinter.
func Table(data [][]string) { DefaultPrinter.Table(data) }

// TableBoxed prints boxed data using DefaultPrinter.
func TableBoxed(data [][]string) { DefaultPrinter.TableBoxed(data) }

// Error prints msg as an error using DefaultPrinter.
func Error(msg string) { DefaultPrinter.Error(msg) }

// Info prints msg using DefaultPrinter.
func Info(msg string) { DefaultPrinter.Info(msg) }
