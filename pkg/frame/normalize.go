package frame

import (
	"image"
)

// Luminance converts src to grayscale with the ITU-R BT.601 weights
// 0.299, 0.587 and 0.114, rounded to nearest. Alpha is ignored.
func Luminance(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := range b.Dy() {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride

		for x := range b.Dx() {
			r := uint32(src.Pix[si])
			g := uint32(src.Pix[si+1])
			bl := uint32(src.Pix[si+2])
			dst.Pix[di+x] = uint8((299*r + 587*g + 114*bl + 500) / 1000)
			si += 4
		}
	}

	return dst
}

// Stretch linearly rescales src so its darkest sample becomes 0 and its
// brightest 255, rounding to nearest. A uniform image is returned as an
// unchanged copy.
func Stretch(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	lo, hi := uint8(255), uint8(0)

	for y := range b.Dy() {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):][:b.Dx()]
		for _, v := range row {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	span := uint32(hi) - uint32(lo)

	for y := range b.Dy() {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):][:b.Dx()]
		out := dst.Pix[y*dst.Stride:][:b.Dx()]

		if span == 0 {
			copy(out, row)

			continue
		}

		for x, v := range row {
			out[x] = uint8(((uint32(v)-uint32(lo))*510 + span) / (2 * span))
		}
	}

	return dst
}

// Normalize converts src to a contrast-stretched grayscale image.
func Normalize(src *image.RGBA) *image.Gray {
	return Stretch(Luminance(src))
}
