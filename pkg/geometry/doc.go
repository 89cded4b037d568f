// Package geometry maps a terminal window's on-screen pixel rectangle to its
// character grid.
//
// A [Resolver] finds the window by identifier through a [WindowFinder], reads
// the grid size from a [GridSizer], and multiplies the grid by a
// [Calibration]: the average pixel size of one character cell in the
// terminal's font. Calibration depends on font and DPI, so it is
// configuration rather than a constant. When it is left at zero, the
// resolver derives it from the terminal's reported pixel size, if the
// [GridSizer] also implements [PixelSizer].
package geometry
