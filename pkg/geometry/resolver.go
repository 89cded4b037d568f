package geometry

import (
	"fmt"
	"image"
	"log/slog"
)

// WindowFinder looks up an on-screen window by identifier.
type WindowFinder interface {
	// FindWindow returns the window's bounds in screen pixels, or an error
	// wrapping [ErrWindowNotFound].
	FindWindow(id uint32) (image.Rectangle, error)
}

// GridSizer reports the controlling terminal's character grid.
type GridSizer interface {
	GridSize() (columns, rows int, err error)
}

// PixelSizer reports the controlling terminal's total size in pixels.
type PixelSizer interface {
	PixelSize() (width, height int, err error)
}

// Resolver computes a [Geometry] from window metrics and a [Calibration].
type Resolver struct {
	windows     WindowFinder
	grid        GridSizer
	calibration Calibration
}

type ResolverOpt func(*Resolver)

// WithCalibration sets the cell size. Defaults to [DefaultCalibration].
func WithCalibration(c Calibration) ResolverOpt {
	return func(r *Resolver) {
		r.calibration = c
	}
}

func NewResolver(windows WindowFinder, grid GridSizer, opts ...ResolverOpt) *Resolver {
	r := &Resolver{
		windows:     windows,
		grid:        grid,
		calibration: DefaultCalibration,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the geometry of the window identified by windowID.
// The grid size is only queried once the window has been found.
func (r *Resolver) Resolve(windowID uint32) (Geometry, error) {
	err := r.calibration.Validate()
	if err != nil {
		return Geometry{}, err
	}

	bounds, err := r.windows.FindWindow(windowID)
	if err != nil {
		return Geometry{}, fmt.Errorf("find window %d: %w", windowID, err)
	}

	columns, rows, err := r.grid.GridSize()
	if err != nil {
		return Geometry{}, fmt.Errorf("get terminal size: %w", err)
	}

	cal, err := r.effectiveCalibration(columns, rows)
	if err != nil {
		return Geometry{}, err
	}

	width, height := cal.PixelBounds(columns, rows)
	g := Geometry{
		X:           bounds.Min.X,
		Y:           bounds.Min.Y,
		PixelWidth:  width,
		PixelHeight: height,
		Columns:     columns,
		Rows:        rows,
	}

	err = g.Validate()
	if err != nil {
		return Geometry{}, err
	}

	slog.Debug("resolved terminal geometry",
		slog.Uint64("window", uint64(windowID)),
		slog.Any("rect", g.Rect()),
		slog.Int("columns", columns),
		slog.Int("rows", rows),
		slog.Float64("cell_width", cal.CellWidth),
		slog.Float64("cell_height", cal.CellHeight),
	)

	return g, nil
}

func (r *Resolver) effectiveCalibration(columns, rows int) (Calibration, error) {
	if !r.calibration.IsZero() {
		return r.calibration, nil
	}

	ps, ok := r.grid.(PixelSizer)
	if !ok {
		return Calibration{}, fmt.Errorf("%w: calibration unset and terminal pixel size unavailable",
			ErrGeometryDegenerate)
	}

	width, height, err := ps.PixelSize()
	if err != nil {
		return Calibration{}, fmt.Errorf("get terminal pixel size: %w", err)
	}

	cal, err := CalibrationFromPixels(width, height, columns, rows)
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: %w", ErrGeometryDegenerate, err)
	}

	return cal, nil
}
