package geometry

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrWindowNotFound indicates that no on-screen window has the requested
	// identifier.
	ErrWindowNotFound = errors.New("window not found")

	// ErrGeometryDegenerate indicates a resolved geometry with a
	// non-positive grid or pixel dimension.
	ErrGeometryDegenerate = errors.New("degenerate terminal geometry")
)

// ScreenSize is the display resolution in pixels.
type ScreenSize struct {
	Width  int
	Height int
}

func (s ScreenSize) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: screen size %dx%d", ErrGeometryDegenerate, s.Width, s.Height)
	}

	return nil
}

func (s ScreenSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Geometry is a terminal window's pixel rectangle on screen together with
// its character grid.
type Geometry struct {
	X           int
	Y           int
	PixelWidth  int
	PixelHeight int
	Columns     int
	Rows        int
}

// Rect returns the window's pixel rectangle in screen coordinates.
func (g Geometry) Rect() image.Rectangle {
	return image.Rect(g.X, g.Y, g.X+g.PixelWidth, g.Y+g.PixelHeight)
}

// Validate returns [ErrGeometryDegenerate] unless the grid and pixel
// dimensions are all positive.
func (g Geometry) Validate() error {
	switch {
	case g.Columns <= 0 || g.Rows <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrGeometryDegenerate, g.Columns, g.Rows)
	case g.PixelWidth <= 0 || g.PixelHeight <= 0:
		return fmt.Errorf("%w: pixel bounds %dx%d", ErrGeometryDegenerate, g.PixelWidth, g.PixelHeight)
	}

	return nil
}
