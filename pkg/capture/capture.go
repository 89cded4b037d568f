// Package capture provides sources of video frames.
//
// A [Provider] opens a [Device], which yields frames of a fixed size until
// it is closed or the stream ends. Two providers are available: [FFmpeg]
// reads raw RGB frames from an ffmpeg child process, and [Files] plays back
// still images from disk.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrDeviceUnavailable is returned when a capture device cannot be opened.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrEndOfStream is returned by [Device.ReadFrame] once no more frames
	// can be produced.
	ErrEndOfStream = errors.New("end of stream")

	ErrUnknownSource = errors.New("unknown capture source")
)

// Provider opens capture devices.
type Provider interface {
	Open(ctx context.Context) (Device, error)
}

// Device is an open capture session. Frames all have the size reported by
// Size. A Device is used from a single goroutine.
type Device interface {
	// ReadFrame blocks until the next frame is available. The returned
	// image is owned by the caller.
	ReadFrame() (*image.RGBA, error)
	// Size returns the native frame size.
	Size() (width, height int)
	Close() error
}

// NewProvider returns the provider selected by cfg.Source.
func NewProvider(cfg *Config, environ []string) (Provider, error) {
	switch cfg.Source {
	case SourceFFmpeg:
		return NewFFmpeg(cfg.FFmpeg, environ), nil
	case SourceFiles:
		return NewFiles(cfg.Files), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
}
