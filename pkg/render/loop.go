// Package render drives the capture to terminal pipeline.
//
// A [Loop] opens a capture device, then repeatedly reads a frame, crops and
// scales it to the terminal window, normalizes it to grayscale, encodes it
// as glyphs and prints it. Cancellation is checked once per frame.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/termcam/pkg/ascii"
	"github.com/macropower/termcam/pkg/capture"
	"github.com/macropower/termcam/pkg/frame"
	"github.com/macropower/termcam/pkg/geometry"
	"github.com/macropower/termcam/pkg/log"
)

var (
	// ErrCaptureRead is returned when a frame cannot be read.
	ErrCaptureRead = errors.New("capture read failed")

	ErrPrint         = errors.New("print frame")
	ErrNegativeDelay = errors.New("delay must not be negative")
)

// State is the lifecycle state of a [Loop].
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Printer outputs one encoded frame.
type Printer interface {
	Print(grid ascii.Grid) error
}

// Canceller reports whether the user asked to stop.
type Canceller interface {
	CancelRequested() bool
}

type neverCancel struct{}

func (neverCancel) CancelRequested() bool { return false }

// Loop renders frames from a capture device until cancelled or the device
// fails. A Loop runs once.
type Loop struct {
	tracer    trace.Tracer
	provider  capture.Provider
	printer   Printer
	canceller Canceller
	adapter   *frame.Adapter
	encoder   *ascii.Encoder
	stats     Stats
	geometry  geometry.Geometry
	delay     time.Duration
	state     State
}

type LoopOpt func(*Loop)

// WithDelay sets the pause after each printed frame. Defaults to
// [DefaultDelay].
func WithDelay(d time.Duration) LoopOpt {
	return func(l *Loop) {
		l.delay = d
	}
}

// WithCanceller sets the source of user cancellation.
func WithCanceller(c Canceller) LoopOpt {
	return func(l *Loop) {
		l.canceller = c
	}
}

// WithEncoder sets the glyph encoder.
func WithEncoder(e *ascii.Encoder) LoopOpt {
	return func(l *Loop) {
		l.encoder = e
	}
}

func NewLoop(
	provider capture.Provider,
	adapter *frame.Adapter,
	g geometry.Geometry,
	printer Printer,
	opts ...LoopOpt,
) *Loop {
	l := &Loop{
		tracer:    otel.Tracer("render"),
		provider:  provider,
		adapter:   adapter,
		geometry:  g,
		printer:   printer,
		canceller: neverCancel{},
		encoder:   ascii.NewEncoder(),
		delay:     DefaultDelay,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// State returns the current state.
func (l *Loop) State() State {
	return l.state
}

// Stats returns counters for the frames rendered so far.
func (l *Loop) Stats() Stats {
	return l.stats
}

// Run opens the capture device and renders until the canceller or ctx asks
// to stop, which yields [StateStopped] and a nil error. Any capture or print
// failure yields [StateFailed], unless ctx was cancelled by then. The device is closed before Run returns.
func (l *Loop) Run(ctx context.Context) (State, error) {
	logger := log.WithContext(ctx)

	dev, err := l.provider.Open(ctx)
	if err != nil {
		if !errors.Is(err, capture.ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %w", capture.ErrDeviceUnavailable, err)
		}

		return l.fail(err)
	}

	defer func() {
		err := dev.Close()
		if err != nil {
			logger.WarnContext(ctx, "close capture device", slog.Any("error", err))
		}
	}()

	l.state = StateRunning
	l.stats.Started = time.Now()

	width, height := dev.Size()
	logger.DebugContext(ctx, "rendering",
		slog.Int("frame_width", width),
		slog.Int("frame_height", height),
		slog.Any("crop", l.geometry.Rect()),
		slog.Duration("delay", l.delay),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		err := l.renderFrame(ctx, dev)
		if err != nil {
			// A cancelled context may already have torn down the source.
			if ctx.Err() != nil {
				logger.DebugContext(ctx, "frame interrupted by shutdown", slog.Any("error", err))

				return l.stop()
			}

			return l.fail(err)
		}

		if l.canceller.CancelRequested() || ctx.Err() != nil {
			return l.stop()
		}

		timer.Reset(l.delay)

		select {
		case <-ctx.Done():
			return l.stop()
		case <-timer.C:
		}
	}
}

func (l *Loop) renderFrame(ctx context.Context, dev capture.Device) error {
	start := time.Now()

	_, span := l.tracer.Start(ctx, "render.frame", trace.WithAttributes(
		attribute.Int("frame", l.stats.Frames),
	))
	defer span.End()

	img, err := dev.ReadFrame()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("%w: %w", ErrCaptureRead, err)
	}

	span.AddEvent("captured")

	adapted := l.adapter.Adapt(img, l.geometry)
	span.AddEvent("adapted", trace.WithAttributes(
		attribute.Int("width", adapted.Bounds().Dx()),
		attribute.Int("height", adapted.Bounds().Dy()),
	))

	gray := frame.Normalize(adapted)
	grid := l.encoder.Encode(gray, l.geometry.Columns, l.geometry.Rows)
	span.AddEvent("encoded", trace.WithAttributes(attribute.Int("lines", len(grid))))

	err = l.printer.Print(grid)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("%w: %w", ErrPrint, err)
	}

	l.stats.add(grid, time.Since(start))

	return nil
}

func (l *Loop) fail(err error) (State, error) {
	l.state = StateFailed
	l.stats.finish()

	return l.state, err
}

func (l *Loop) stop() (State, error) {
	l.state = StateStopped
	l.stats.finish()

	return l.state, nil
}
