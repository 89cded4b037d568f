package frame_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/termcam/pkg/frame"
	"github.com/macropower/termcam/pkg/geometry"
)

func uniformRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}

	return img
}

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}

	return img
}

func TestAdapter_ScaledSize(t *testing.T) {
	t.Parallel()

	screen := geometry.ScreenSize{Width: 1440, Height: 900}

	tcs := map[string]struct {
		frameW, frameH int
		wantW, wantH   int
	}{
		"shorter than screen fits width": {
			frameW: 1280, frameH: 720,
			wantW: 1440, wantH: 810,
		},
		"taller than screen fits height": {
			frameW: 1920, frameH: 1080,
			wantW: 1600, wantH: 900,
		},
		"equal height fits width": {
			frameW: 1200, frameH: 900,
			wantW: 1440, wantH: 1080,
		},
		"empty frame": {
			frameW: 0, frameH: 0,
			wantW: 0, wantH: 0,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a := frame.NewAdapter(screen)
			w, h := a.ScaledSize(tc.frameW, tc.frameH)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestAdapter_Adapt(t *testing.T) {
	t.Parallel()

	screen := geometry.ScreenSize{Width: 200, Height: 100}
	src := uniformRGBA(100, 50, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	tcs := map[string]struct {
		geometry geometry.Geometry
		want     image.Rectangle
	}{
		"inside": {
			geometry: geometry.Geometry{X: 20, Y: 10, PixelWidth: 80, PixelHeight: 40, Columns: 8, Rows: 4},
			want:     image.Rect(0, 0, 80, 40),
		},
		"overhangs right and bottom": {
			geometry: geometry.Geometry{X: 150, Y: 80, PixelWidth: 100, PixelHeight: 100, Columns: 10, Rows: 5},
			want:     image.Rect(0, 0, 50, 20),
		},
		"starts left of frame": {
			geometry: geometry.Geometry{X: -30, Y: 0, PixelWidth: 60, PixelHeight: 10, Columns: 6, Rows: 1},
			want:     image.Rect(0, 0, 30, 10),
		},
		"entirely outside": {
			geometry: geometry.Geometry{X: 500, Y: 500, PixelWidth: 10, PixelHeight: 10, Columns: 1, Rows: 1},
			want:     image.Rectangle{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a := frame.NewAdapter(screen)

			var got *image.RGBA

			require.NotPanics(t, func() {
				got = a.Adapt(src, tc.geometry)
			})
			assert.Equal(t, tc.want, got.Bounds())

			if !tc.want.Empty() {
				assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, got.RGBAAt(0, 0))
			}
		})
	}
}

func TestCropRect_NeverExceedsBounds(t *testing.T) {
	t.Parallel()

	for x := -50; x <= 250; x += 25 {
		for y := -50; y <= 150; y += 25 {
			g := geometry.Geometry{X: x, Y: y, PixelWidth: 90, PixelHeight: 45, Columns: 9, Rows: 3}
			r := frame.CropRect(g, 200, 100)

			assert.True(t, r.In(image.Rect(0, 0, 200, 100)), "rect %v for x=%d y=%d", r, x, y)
		}
	}
}

func TestLuminance(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   color.RGBA
		want uint8
	}{
		"black": {in: color.RGBA{A: 255}, want: 0},
		"white": {in: color.RGBA{R: 255, G: 255, B: 255, A: 255}, want: 255},
		"red":   {in: color.RGBA{R: 255, A: 255}, want: 76},
		"green": {in: color.RGBA{G: 255, A: 255}, want: 150},
		"blue":  {in: color.RGBA{B: 255, A: 255}, want: 29},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := frame.Luminance(uniformRGBA(2, 2, tc.in))
			assert.Equal(t, tc.want, got.GrayAt(1, 1).Y)
		})
	}
}

func TestStretch(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 3, 1))
	src.Pix = []uint8{50, 100, 150}

	got := frame.Stretch(src)
	assert.Equal(t, []uint8{0, 128, 255}, got.Pix)
	assert.Equal(t, []uint8{50, 100, 150}, src.Pix, "source must not be modified")
}

func TestStretch_Uniform(t *testing.T) {
	t.Parallel()

	got := frame.Stretch(uniformGray(16, 9, 128))
	for _, v := range got.Pix {
		require.Equal(t, uint8(128), v)
	}
}

func TestNormalize_Uniform(t *testing.T) {
	t.Parallel()

	got := frame.Normalize(uniformRGBA(8, 8, color.RGBA{R: 128, G: 128, B: 128, A: 255}))
	for _, v := range got.Pix {
		require.Equal(t, uint8(128), v)
	}
}

func TestStretch_SubImage(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 4, 2))
	src.Pix = []uint8{
		0, 10, 20, 255,
		0, 30, 40, 255,
	}
	sub, ok := src.SubImage(image.Rect(1, 0, 3, 2)).(*image.Gray)
	require.True(t, ok)

	got := frame.Stretch(sub)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
	assert.Equal(t, []uint8{0, 85, 170, 255}, got.Pix)
}
