// Package ascii encodes grayscale images as lines of glyphs sized to a
// terminal's character grid.
package ascii

import (
	"image"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// CellAspect is the width to height ratio of a terminal cell. Output height
// is scaled by it so the image keeps its proportions on screen.
const CellAspect = 0.55

// Grid is one rendered frame, one string per terminal row.
type Grid []string

// String joins the rows with newlines.
func (g Grid) String() string {
	return strings.Join(g, "\n")
}

// Encoder converts grayscale images to glyph grids.
type Encoder struct {
	scaler xdraw.Scaler
	ramp   Ramp
	glyphs [256]rune
}

type EncoderOpt func(*Encoder)

// WithRamp sets the glyph ramp. Defaults to [DefaultRamp].
func WithRamp(r Ramp) EncoderOpt {
	return func(e *Encoder) {
		if r != "" {
			e.ramp = r
		}
	}
}

func NewEncoder(opts ...EncoderOpt) *Encoder {
	e := &Encoder{
		ramp:   DefaultRamp,
		scaler: xdraw.CatmullRom,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.glyphs = e.ramp.table()

	return e
}

// Ramp returns the glyph ramp in use.
func (e *Encoder) Ramp() Ramp {
	return e.ramp
}

var defaultEncoder = NewEncoder()

// Encode converts src with the default encoder.
func Encode(src *image.Gray, columns, rows int) Grid {
	return defaultEncoder.Encode(src, columns, rows)
}

// Height returns the number of glyph rows a width x height image occupies
// when rendered at the given number of columns.
func Height(width, height, columns int) int {
	if width <= 0 || height <= 0 || columns <= 0 {
		return 0
	}

	return int(math.Round(float64(height) / float64(width) * float64(columns) * CellAspect))
}

// Encode downsamples src to columns glyphs per line and maps every sample
// to a glyph. At most rows lines are returned; rows <= 0 disables the limit.
// Empty input yields an empty grid.
func (e *Encoder) Encode(src *image.Gray, columns, rows int) Grid {
	b := src.Bounds()

	height := Height(b.Dx(), b.Dy(), columns)
	if height == 0 {
		return Grid{}
	}

	small := image.NewGray(image.Rect(0, 0, columns, height))
	e.scaler.Scale(small, small.Bounds(), src, b, xdraw.Src, nil)

	// Lines past the limit are cut from the bottom.
	if rows > 0 {
		height = min(height, rows)
	}

	glyphs := make([]rune, 0, columns*height)
	for _, v := range small.Pix[:columns*height] {
		glyphs = append(glyphs, e.glyphs[v])
	}

	return pack(glyphs, columns)
}

// pack splits glyphs into lines of width glyphs. The last line keeps
// whatever remains, even if shorter.
func pack(glyphs []rune, width int) Grid {
	if width <= 0 || len(glyphs) == 0 {
		return Grid{}
	}

	grid := make(Grid, 0, (len(glyphs)+width-1)/width)
	for len(glyphs) > 0 {
		n := min(width, len(glyphs))
		grid = append(grid, string(glyphs[:n]))
		glyphs = glyphs[n:]
	}

	return grid
}
