package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidCalibration is returned for negative cell sizes.
var ErrInvalidCalibration = errors.New("invalid calibration")

// Calibration is the average rendered size, in pixels, of one character cell
// in the terminal's current font.
type Calibration struct {
	// CellWidth is the average pixel width of one character cell. Zero means
	// derive it from the terminal's reported pixel size.
	CellWidth float64 `json:"cellWidth" jsonschema:"title=Cell Width,minimum=0"`
	// CellHeight is the average pixel height of one character cell. Zero
	// means derive it from the terminal's reported pixel size.
	CellHeight float64 `json:"cellHeight" jsonschema:"title=Cell Height,minimum=0"`
}

// DefaultCalibration was measured on a 13" Retina display with the macOS
// Terminal default profile.
var DefaultCalibration = Calibration{
	CellWidth:  9.028871391076116,
	CellHeight: 17.142857142857142,
}

// IsZero reports whether either cell dimension is unset.
func (c Calibration) IsZero() bool {
	return c.CellWidth == 0 || c.CellHeight == 0
}

func (c Calibration) Validate() error {
	if c.CellWidth < 0 || c.CellHeight < 0 {
		return fmt.Errorf("%w: cell size %gx%g", ErrInvalidCalibration, c.CellWidth, c.CellHeight)
	}

	return nil
}

// PixelBounds returns the pixel size of a grid of columns x rows cells.
// Fractions are truncated.
func (c Calibration) PixelBounds(columns, rows int) (width, height int) {
	return int(float64(columns) * c.CellWidth), int(float64(rows) * c.CellHeight)
}

// CalibrationFromPixels derives a calibration from a terminal's total pixel
// size and its grid size.
func CalibrationFromPixels(pixelWidth, pixelHeight, columns, rows int) (Calibration, error) {
	if pixelWidth <= 0 || pixelHeight <= 0 || columns <= 0 || rows <= 0 {
		return Calibration{}, fmt.Errorf("%w: terminal reports %dx%d pixels for %dx%d cells",
			ErrInvalidCalibration, pixelWidth, pixelHeight, columns, rows)
	}

	return Calibration{
		CellWidth:  float64(pixelWidth) / float64(columns),
		CellHeight: float64(pixelHeight) / float64(rows),
	}, nil
}
