package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-shellwords"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/termcam/pkg/execs"
	"github.com/macropower/termcam/pkg/log"
)

// FFmpeg captures frames by running ffmpeg and reading rgb24 rawvideo from
// its standard output.
type FFmpeg struct {
	tracer  trace.Tracer
	cfg     FFmpegConfig
	environ []string
}

// NewFFmpeg creates an [FFmpeg] provider. A nil cfg uses the defaults.
// The child's environment is built from environ, usually [os.Environ].
func NewFFmpeg(cfg *FFmpegConfig, environ []string) *FFmpeg {
	c := FFmpegConfig{}
	if cfg != nil {
		c = *cfg
	}

	c.EnsureDefaults()

	return &FFmpeg{
		tracer:  otel.Tracer("capture"),
		cfg:     c,
		environ: environ,
	}
}

// Command returns the ffmpeg invocation used by Open.
func (f *FFmpeg) Command() (execs.Command, error) {
	extra, err := shellwords.Parse(f.cfg.ExtraArgs)
	if err != nil {
		return execs.Command{}, fmt.Errorf("parse extra args: %w", err)
	}

	size := fmt.Sprintf("%dx%d", f.cfg.Width, f.cfg.Height)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", f.cfg.Format,
		"-framerate", strconv.Itoa(f.cfg.FrameRate),
		"-video_size", size,
	}
	args = append(args, extra...)
	args = append(args,
		"-i", f.cfg.Device,
		"-an",
		"-s", size,
		"-pix_fmt", "rgb24",
		"-f", "rawvideo",
		"pipe:1",
	)

	cmd := execs.NewCommand(f.environ, f.cfg.Path, args...)
	cmd.Env = f.cfg.Env
	cmd.EnvFrom = f.cfg.EnvFrom

	return cmd, nil
}

// Open starts ffmpeg and waits for the first frame, so that a missing or
// busy device is reported here rather than on the first read.
func (f *FFmpeg) Open(ctx context.Context) (Device, error) {
	ctx, span := f.tracer.Start(ctx, "capture.open", trace.WithAttributes(
		attribute.String("source", SourceFFmpeg),
		attribute.String("device", f.cfg.Device),
	))
	defer span.End()

	cmd, err := f.Command()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	proc, err := execs.Start(ctx, cmd)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	d := &ffmpegDevice{
		proc:   proc,
		width:  f.cfg.Width,
		height: f.cfg.Height,
	}

	first, err := d.read()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		closeErr := d.Close()
		if closeErr != nil {
			err = errors.Join(err, closeErr)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrDeviceUnavailable, f.cfg.Device, err)
	}

	d.pending = first

	log.WithContext(ctx).InfoContext(ctx, "capture device opened",
		slog.String("device", f.cfg.Device),
		slog.String("format", f.cfg.Format),
		slog.Int("width", d.width),
		slog.Int("height", d.height),
		slog.String("frame_size", humanize.Bytes(uint64(d.width*d.height*3))),
	)

	return d, nil
}

type ffmpegDevice struct {
	proc    *execs.Process
	pending *image.RGBA
	buf     []byte
	width   int
	height  int
}

func (d *ffmpegDevice) Size() (int, int) {
	return d.width, d.height
}

func (d *ffmpegDevice) ReadFrame() (*image.RGBA, error) {
	if d.pending != nil {
		img := d.pending
		d.pending = nil

		return img, nil
	}

	return d.read()
}

func (d *ffmpegDevice) read() (*image.RGBA, error) {
	if d.buf == nil {
		d.buf = make([]byte, d.width*d.height*3)
	}

	_, err := io.ReadFull(d.proc.Stdout(), d.buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		// Reap the child so its stderr is complete.
		stopErr := d.proc.Stop()
		if msg := d.proc.Stderr(); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrEndOfStream, msg)
		}
		if stopErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrEndOfStream, stopErr)
		}

		return nil, ErrEndOfStream
	}
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	return RGBFromPacked(d.buf, d.width, d.height), nil
}

func (d *ffmpegDevice) Close() error {
	return d.proc.Stop()
}

// RGBFromPacked converts packed 8-bit RGB samples to an opaque RGBA image.
func RGBFromPacked(pix []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for i, j := 0, 0; i+2 < len(pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = pix[i]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xff
	}

	return img
}
