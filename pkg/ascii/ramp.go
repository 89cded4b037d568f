package ascii

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidRamp is returned for ramps that cannot be rendered.
var ErrInvalidRamp = errors.New("invalid glyph ramp")

// Ramp is an ordered set of glyphs, densest first. Dark intensities map to
// dense glyphs and bright intensities to sparse ones. Glyphs are runes, so
// block characters such as "█▓▒░" work as well as ASCII.
type Ramp string

// DefaultRamp holds 11 distinct glyphs, one per band of 25 intensity levels.
// The last band also covers 250..255.
const DefaultRamp Ramp = "@#S&$%*+!:."

// Len returns the number of glyphs.
func (r Ramp) Len() int {
	return utf8.RuneCountInString(string(r))
}

// Validate requires at least one glyph and rejects control and combining
// characters.
func (r Ramp) Validate() error {
	if r == "" {
		return fmt.Errorf("%w: no glyphs", ErrInvalidRamp)
	}

	if !utf8.ValidString(string(r)) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidRamp)
	}

	for _, g := range r {
		if !unicode.IsPrint(g) || unicode.Is(unicode.Mn, g) {
			return fmt.Errorf("%w: unprintable glyph %q", ErrInvalidRamp, g)
		}
	}

	return nil
}

// Glyph returns the glyph for intensity v. An empty ramp yields a space.
func (r Ramp) Glyph(v uint8) rune {
	glyphs := []rune(r)
	if len(glyphs) == 0 {
		return ' '
	}

	return glyphs[bandIndex(v, len(glyphs))]
}

// Index returns the ramp position used for intensity v. It is monotonic
// non-decreasing in v.
func (r Ramp) Index(v uint8) int {
	return bandIndex(v, r.Len())
}

// table returns the glyph for every intensity.
func (r Ramp) table() [256]rune {
	var t [256]rune
	for v := range t {
		t[v] = r.Glyph(uint8(v))
	}

	return t
}

// bandIndex splits 0..255 into n bands of 255/(n-1) levels each, with the
// remainder folded into the last band. Eleven glyphs give bands of 25.
func bandIndex(v uint8, n int) int {
	if n <= 1 {
		return 0
	}

	band := max(255/(n-1), 1)

	return min(int(v)/band, n-1)
}
