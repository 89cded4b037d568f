//go:build unix

package terminal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PixelSize returns the terminal's size in pixels as reported by
// TIOCGWINSZ. Terminals that do not track it report zero.
func (t *TTY) PixelSize() (int, int, error) {
	ws, err := unix.IoctlGetWinsize(int(t.f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: ioctl TIOCGWINSZ: %w", t.f.Name(), err)
	}

	return int(ws.Xpixel), int(ws.Ypixel), nil
}
