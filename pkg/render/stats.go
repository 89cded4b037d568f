package render

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/macropower/termcam/pkg/ascii"
)

// Stats summarizes a run.
type Stats struct {
	Started   time.Time
	Elapsed   time.Duration
	Busy      time.Duration
	Frames    int
	Glyphs    uint64
	LastLines int
}

func (s *Stats) add(grid ascii.Grid, took time.Duration) {
	s.Frames++
	s.Busy += took
	s.LastLines = len(grid)

	for _, row := range grid {
		s.Glyphs += uint64(len(row))
	}
}

func (s *Stats) finish() {
	if !s.Started.IsZero() {
		s.Elapsed = time.Since(s.Started)
	}
}

// FrameTime is the mean time spent producing a frame, excluding the delay.
func (s Stats) FrameTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}

	return s.Busy / time.Duration(s.Frames)
}

// LogValue implements [slog.LogValuer].
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.Duration("elapsed", s.Elapsed.Round(time.Millisecond)),
		slog.Duration("frame_time", s.FrameTime()),
		slog.String("output", humanize.Bytes(s.Glyphs)),
	)
}
