package geometry_test

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/termcam/pkg/geometry"
)

type fakeWindows map[uint32]image.Rectangle

func (f fakeWindows) FindWindow(id uint32) (image.Rectangle, error) {
	r, ok := f[id]
	if !ok {
		return image.Rectangle{}, fmt.Errorf("%w: id %d", geometry.ErrWindowNotFound, id)
	}

	return r, nil
}

type fakeGrid struct {
	err        error
	columns    int
	rows       int
	pixelW     int
	pixelH     int
	gridCalls  int
	pixelCalls int
}

func (f *fakeGrid) GridSize() (int, int, error) {
	f.gridCalls++

	return f.columns, f.rows, f.err
}

type fakePixelGrid struct {
	*fakeGrid
}

func (f fakePixelGrid) PixelSize() (int, int, error) {
	f.pixelCalls++

	return f.pixelW, f.pixelH, nil
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	windows := fakeWindows{
		42: image.Rect(100, 50, 900, 650),
	}

	tcs := map[string]struct {
		grid        geometry.GridSizer
		calibration geometry.Calibration
		want        geometry.Geometry
		windowID    uint32
		wantErr     error
	}{
		"default calibration": {
			windowID:    42,
			grid:        &fakeGrid{columns: 80, rows: 24},
			calibration: geometry.DefaultCalibration,
			want: geometry.Geometry{
				X: 100, Y: 50,
				PixelWidth: 722, PixelHeight: 411,
				Columns: 80, Rows: 24,
			},
		},
		"custom calibration": {
			windowID:    42,
			grid:        &fakeGrid{columns: 100, rows: 30},
			calibration: geometry.Calibration{CellWidth: 8, CellHeight: 16},
			want: geometry.Geometry{
				X: 100, Y: 50,
				PixelWidth: 800, PixelHeight: 480,
				Columns: 100, Rows: 30,
			},
		},
		"derived calibration": {
			windowID: 42,
			grid:     fakePixelGrid{&fakeGrid{columns: 80, rows: 24, pixelW: 640, pixelH: 384}},
			want: geometry.Geometry{
				X: 100, Y: 50,
				PixelWidth: 640, PixelHeight: 384,
				Columns: 80, Rows: 24,
			},
		},
		"zero calibration without pixel size": {
			windowID: 42,
			grid:     &fakeGrid{columns: 80, rows: 24},
			wantErr:  geometry.ErrGeometryDegenerate,
		},
		"zero grid": {
			windowID:    42,
			grid:        &fakeGrid{columns: 0, rows: 24},
			calibration: geometry.DefaultCalibration,
			wantErr:     geometry.ErrGeometryDegenerate,
		},
		"negative calibration": {
			windowID:    42,
			grid:        &fakeGrid{columns: 80, rows: 24},
			calibration: geometry.Calibration{CellWidth: -1, CellHeight: 10},
			wantErr:     geometry.ErrInvalidCalibration,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := geometry.NewResolver(windows, tc.grid, geometry.WithCalibration(tc.calibration))
			got, err := r.Resolve(tc.windowID)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			require.NoError(t, got.Validate())
		})
	}
}

func TestResolver_WindowNotFoundSkipsGridSize(t *testing.T) {
	t.Parallel()

	grid := &fakeGrid{columns: 80, rows: 24}
	r := geometry.NewResolver(fakeWindows{}, grid)

	_, err := r.Resolve(7)
	require.ErrorIs(t, err, geometry.ErrWindowNotFound)
	assert.Equal(t, 0, grid.gridCalls)
}

func TestResolver_GridSizeError(t *testing.T) {
	t.Parallel()

	grid := &fakeGrid{err: errors.New("not a tty")}
	r := geometry.NewResolver(fakeWindows{42: image.Rect(0, 0, 10, 10)}, grid)

	_, err := r.Resolve(42)
	require.ErrorContains(t, err, "not a tty")
	assert.Equal(t, 1, grid.gridCalls)
}

func TestGeometry_Rect(t *testing.T) {
	t.Parallel()

	g := geometry.Geometry{X: 10, Y: 20, PixelWidth: 30, PixelHeight: 40, Columns: 3, Rows: 2}
	assert.Equal(t, image.Rect(10, 20, 40, 60), g.Rect())
}

func TestCalibrationFromPixels(t *testing.T) {
	t.Parallel()

	cal, err := geometry.CalibrationFromPixels(1600, 960, 200, 60)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, cal.CellWidth, 1e-9)
	assert.InDelta(t, 16.0, cal.CellHeight, 1e-9)

	_, err = geometry.CalibrationFromPixels(0, 0, 200, 60)
	require.ErrorIs(t, err, geometry.ErrInvalidCalibration)
}

func TestScreenSize_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, geometry.ScreenSize{Width: 1920, Height: 1080}.Validate())
	require.ErrorIs(t, geometry.ScreenSize{Width: 0, Height: 1080}.Validate(), geometry.ErrGeometryDegenerate)
}
