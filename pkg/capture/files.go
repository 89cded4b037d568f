package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	_ "golang.org/x/image/bmp"  // Register BMP decoder.
	_ "golang.org/x/image/webp" // Register WebP decoder.

	xdraw "golang.org/x/image/draw"

	"github.com/macropower/termcam/pkg/log"
)

// ErrNoImages is returned when a files source contains no images.
var ErrNoImages = errors.New("no images found")

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// Files plays back still images. Every image is scaled to the size of the
// first one, so a directory behaves like a fixed-size stream.
type Files struct {
	tracer trace.Tracer
	cfg    FilesConfig
}

// NewFiles creates a [Files] provider. A nil cfg reads from the working
// directory.
func NewFiles(cfg *FilesConfig) *Files {
	c := FilesConfig{}
	if cfg != nil {
		c = *cfg
	}

	if c.Path == "" {
		c.Path = "."
	}

	return &Files{
		tracer: otel.Tracer("capture"),
		cfg:    c,
	}
}

func (f *Files) Open(ctx context.Context) (Device, error) {
	ctx, span := f.tracer.Start(ctx, "capture.open", trace.WithAttributes(
		attribute.String("source", SourceFiles),
		attribute.String("path", f.cfg.Path),
	))
	defer span.End()

	paths, err := listImages(f.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	first, err := decodeFile(paths[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	b := first.Bounds()

	log.WithContext(ctx).InfoContext(ctx, "image source opened",
		slog.String("path", f.cfg.Path),
		slog.Int("images", len(paths)),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()),
	)

	return &filesDevice{
		paths:   paths,
		loop:    f.cfg.Loop,
		width:   b.Dx(),
		height:  b.Dy(),
		pending: first,
	}, nil
}

type filesDevice struct {
	pending *image.RGBA
	paths   []string
	next    int
	width   int
	height  int
	loop    bool
	closed  bool
}

func (d *filesDevice) Size() (int, int) {
	return d.width, d.height
}

func (d *filesDevice) ReadFrame() (*image.RGBA, error) {
	if d.closed {
		return nil, ErrEndOfStream
	}

	if d.next >= len(d.paths) {
		if !d.loop {
			return nil, ErrEndOfStream
		}

		d.next = 0
	}

	path := d.paths[d.next]
	d.next++

	if d.pending != nil && d.next == 1 {
		img := d.pending
		d.pending = nil

		return img, nil
	}

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if img.Bounds().Dx() == d.width && img.Bounds().Dy() == d.height {
		return img, nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	return scaled, nil
}

func (d *filesDevice) Close() error {
	d.closed = true

	return nil
}

func listImages(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string

	for _, e := range entries {
		if e.IsDir() || !slices.Contains(imageExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}

		paths = append(paths, filepath.Join(path, e.Name()))
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, path)
	}

	// ReadDir returns entries sorted by name.
	return paths, nil
}

func decodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return rgba
}
