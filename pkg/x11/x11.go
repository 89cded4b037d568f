// Package x11 reads window positions and the screen size from an X server.
package x11

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/macropower/termcam/pkg/geometry"
)

var ErrConnect = errors.New("connect to X display")

// Config selects the X display and optionally overrides the screen size.
type Config struct {
	// Name is the X display name. Empty uses $DISPLAY.
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
	// Width overrides the screen width in pixels. Zero queries the server.
	Width int `json:"width,omitempty" jsonschema:"title=Width,minimum=0"`
	// Height overrides the screen height in pixels. Zero queries the server.
	Height int `json:"height,omitempty" jsonschema:"title=Height,minimum=0"`
}

// Display is a connection to an X server.
type Display struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	cfg    Config
}

// Open connects to the display named in cfg.
func Open(cfg Config) (*Display, error) {
	conn, err := xgb.NewConnDisplay(cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrConnect, cfg.Name, err)
	}

	return &Display{
		conn:   conn,
		screen: xproto.Setup(conn).DefaultScreen(conn),
		cfg:    cfg,
	}, nil
}

func (d *Display) Close() {
	d.conn.Close()
}

// ScreenSize returns the size of the default screen, unless overridden.
func (d *Display) ScreenSize() (geometry.ScreenSize, error) {
	s := geometry.ScreenSize{
		Width:  int(d.screen.WidthInPixels),
		Height: int(d.screen.HeightInPixels),
	}

	if d.cfg.Width > 0 {
		s.Width = d.cfg.Width
	}

	if d.cfg.Height > 0 {
		s.Height = d.cfg.Height
	}

	return s, s.Validate()
}

// FindWindow returns the on-screen pixel rectangle of the viewable window
// with the given id. Windows that are unmapped, or whose ancestors are,
// are not found.
func (d *Display) FindWindow(id uint32) (image.Rectangle, error) {
	root := d.screen.Root
	target := xproto.Window(id)

	found, err := d.viewable(root, target)
	if err != nil {
		return image.Rectangle{}, err
	}

	if !found {
		return image.Rectangle{}, fmt.Errorf("%w: id 0x%x", geometry.ErrWindowNotFound, id)
	}

	geom, err := xproto.GetGeometry(d.conn, xproto.Drawable(target)).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("get geometry: %w", err)
	}

	pos, err := xproto.TranslateCoordinates(d.conn, target, root, 0, 0).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("translate coordinates: %w", err)
	}

	x, y := int(pos.DstX), int(pos.DstY)
	r := image.Rect(x, y, x+int(geom.Width), y+int(geom.Height))

	slog.Debug("found window",
		slog.Uint64("id", uint64(id)),
		slog.Any("rect", r),
	)

	return r, nil
}

// viewable walks the window tree below parent looking for target among
// mapped windows.
func (d *Display) viewable(parent, target xproto.Window) (bool, error) {
	tree, err := xproto.QueryTree(d.conn, parent).Reply()
	if err != nil {
		return false, fmt.Errorf("query tree: %w", err)
	}

	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(d.conn, child).Reply()
		if err != nil {
			// Windows can disappear between QueryTree and this call.
			continue
		}

		if attrs.MapState != xproto.MapStateViewable {
			continue
		}

		if child == target {
			return true, nil
		}

		found, err := d.viewable(child, target)
		if err != nil {
			continue
		}

		if found {
			return true, nil
		}
	}

	return false, nil
}
