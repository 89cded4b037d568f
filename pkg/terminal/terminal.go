// Package terminal prepares the controlling terminal for frame output and
// reports its size.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/macropower/termcam/pkg/ascii"
)

var ErrNotTerminal = errors.New("not a terminal")

// TTY reports the size of a terminal.
type TTY struct {
	f *os.File
}

func NewTTY(f *os.File) *TTY {
	return &TTY{f: f}
}

// GridSize returns the number of columns and rows.
func (t *TTY) GridSize() (int, int, error) {
	fd := int(t.f.Fd())
	if !term.IsTerminal(fd) {
		return 0, 0, fmt.Errorf("%s: %w", t.f.Name(), ErrNotTerminal)
	}

	columns, rows, err := term.GetSize(fd)
	if err != nil {
		return 0, 0, fmt.Errorf("get size: %w", err)
	}

	return columns, rows, nil
}

// Printer writes grids to a terminal in raw mode.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes every row followed by CRLF.
func (p *Printer) Print(grid ascii.Grid) error {
	if len(grid) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(row)
		sb.WriteString("\r\n")
	}

	_, err := io.WriteString(p.w, sb.String())
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// Session holds the terminal state changed by [Setup].
type Session struct {
	*Printer

	state     *term.State
	restoreVT func() error
	out       io.Writer
	inFd      int
}

// Setup enables virtual terminal processing on out, puts in into raw mode
// and hides the cursor. When in is not a terminal, raw mode is skipped.
// Close must be called to undo all changes.
func Setup(in, out *os.File) (*Session, error) {
	restoreVT, err := termenv.EnableVirtualTerminalProcessing(termenv.NewOutput(out))
	if err != nil {
		return nil, fmt.Errorf("enable virtual terminal processing: %w", err)
	}

	s := &Session{
		Printer:   NewPrinter(out),
		restoreVT: restoreVT,
		out:       out,
		inFd:      int(in.Fd()),
	}

	if term.IsTerminal(s.inFd) {
		s.state, err = term.MakeRaw(s.inFd)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("enter raw mode: %w", err), restoreVT())
		}
	}

	_, err = io.WriteString(out, ansi.HideCursor)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("hide cursor: %w", err), s.Close())
	}

	return s, nil
}

// Raw reports whether the input is in raw mode.
func (s *Session) Raw() bool {
	return s.state != nil
}

// Close shows the cursor and restores the terminal modes.
func (s *Session) Close() error {
	var errs []error

	_, err := io.WriteString(s.out, ansi.ShowCursor)
	if err != nil {
		errs = append(errs, fmt.Errorf("show cursor: %w", err))
	}

	if s.state != nil {
		err = term.Restore(s.inFd, s.state)
		if err != nil {
			errs = append(errs, fmt.Errorf("restore terminal: %w", err))
		}

		s.state = nil
	}

	if s.restoreVT != nil {
		err = s.restoreVT()
		if err != nil {
			errs = append(errs, fmt.Errorf("restore virtual terminal processing: %w", err))
		}

		s.restoreVT = nil
	}

	return errors.Join(errs...)
}
