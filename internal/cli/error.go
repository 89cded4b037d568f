package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/termcam/pkg/capture"
	"github.com/macropower/termcam/pkg/geometry"
	"github.com/macropower/termcam/pkg/render"
	"github.com/macropower/termcam/pkg/terminal"
	"github.com/macropower/termcam/pkg/x11"
)

// hints are printed below errors that wrap a known cause. The first match
// wins, so more specific causes come first.
var hints = []struct {
	err  error
	hint string
}{
	{geometry.ErrWindowNotFound, "Run xwininfo and click the terminal to find its window id."},
	{geometry.ErrInvalidCalibration, "Cell sizes must not be negative, see --cell-width and --cell-height."},
	{geometry.ErrGeometryDegenerate, "Set --cell-width and --cell-height to the pixel size of one character."},
	{capture.ErrUnknownSource, "Use --source ffmpeg or --source files."},
	{capture.ErrNoImages, "Point --path at an image file or a directory of images."},
	{capture.ErrDeviceUnavailable, "Check that the camera is connected and not in use, or pick one with --device."},
	{render.ErrCaptureRead, "The capture stream ended, run with --log-level debug for details."},
	{x11.ErrConnect, "Check that $DISPLAY is set, or pass --display."},
	{terminal.ErrNotTerminal, "Standard output must be a terminal."},
}

func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))
	mustN(fmt.Fprintln(w, lipgloss.NewStyle().MarginLeft(2).Render(err.Error())))
	mustN(fmt.Fprintln(w))
	if isUsageError(err) {
		mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.ErrorText.UnsetWidth().Render("Try"),
			styles.Program.Flag.Render("--help"),
			styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
		)))
		mustN(fmt.Fprintln(w))

		return
	}

	if hint := errorHint(err); hint != "" {
		mustN(fmt.Fprintln(w, styles.ErrorText.UnsetWidth().Render(hint)))
		mustN(fmt.Fprintln(w))
	}
}

func errorHint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.err) {
			return h.hint
		}
	}

	return ""
}

// XXX: this is a hack to detect usage errors.
// See: https://github.com/spf13/cobra/pull/2266
func isUsageError(err error) bool {
	if errors.Is(err, ErrInvalidWindowID) {
		return true
	}

	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
		"accepts at most",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
