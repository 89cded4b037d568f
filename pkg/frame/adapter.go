// Package frame transforms captured frames into the terminal window's pixel
// region and normalizes them to grayscale.
package frame

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/macropower/termcam/pkg/geometry"
)

// Adapter scales captured frames to screen proportions and crops them to a
// terminal window's pixel rectangle.
type Adapter struct {
	scaler xdraw.Scaler
	screen geometry.ScreenSize
}

// NewAdapter creates an [Adapter] for the given screen, scaling with
// [xdraw.BiLinear].
func NewAdapter(screen geometry.ScreenSize) *Adapter {
	return &Adapter{
		screen: screen,
		scaler: xdraw.BiLinear,
	}
}

// ScaledSize returns the size a frameWidth x frameHeight frame takes after
// scaling to the screen. Frames taller than the screen are fitted to the
// screen height; all others are fitted to the screen width. Aspect ratio is
// preserved and fractions are truncated.
func (a *Adapter) ScaledSize(frameWidth, frameHeight int) (width, height int) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return 0, 0
	}

	if frameHeight > a.screen.Height {
		ratio := float64(a.screen.Height) / float64(frameHeight)

		return int(ratio * float64(frameWidth)), a.screen.Height
	}

	ratio := float64(a.screen.Width) / float64(frameWidth)

	return a.screen.Width, int(ratio * float64(frameHeight))
}

// CropRect returns the part of g's pixel rectangle that lies inside a scaled
// frame of the given size. It may be empty.
func CropRect(g geometry.Geometry, scaledWidth, scaledHeight int) image.Rectangle {
	return g.Rect().Intersect(image.Rect(0, 0, scaledWidth, scaledHeight))
}

// Adapt scales src to the screen and crops it to g's pixel rectangle. Parts
// of the rectangle outside the scaled frame are dropped, so the result may
// be smaller than g.PixelWidth x g.PixelHeight, or empty. The result's
// bounds start at the origin.
func (a *Adapter) Adapt(src *image.RGBA, g geometry.Geometry) *image.RGBA {
	b := src.Bounds()
	width, height := a.ScaledSize(b.Dx(), b.Dy())

	crop := CropRect(g, width, height)
	if crop.Empty() {
		return image.NewRGBA(image.Rectangle{})
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	a.scaler.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)

	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(out, out.Bounds(), scaled, crop.Min, draw.Src)

	return out
}
