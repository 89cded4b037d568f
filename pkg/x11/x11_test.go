package x11_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/termcam/pkg/geometry"
	"github.com/macropower/termcam/pkg/x11"
)

func openDisplay(t *testing.T, cfg x11.Config) *x11.Display {
	t.Helper()

	if os.Getenv("DISPLAY") == "" {
		t.Skip("DISPLAY is not set")
	}

	d, err := x11.Open(cfg)
	require.NoError(t, err)

	t.Cleanup(d.Close)

	return d
}

func TestOpen_BadDisplay(t *testing.T) {
	t.Parallel()

	_, err := x11.Open(x11.Config{Name: ":nope"})
	require.ErrorIs(t, err, x11.ErrConnect)
}

func TestDisplay_ScreenSize(t *testing.T) {
	t.Parallel()

	d := openDisplay(t, x11.Config{})

	s, err := d.ScreenSize()
	require.NoError(t, err)
	assert.Positive(t, s.Width)
	assert.Positive(t, s.Height)

	o := openDisplay(t, x11.Config{Width: 1234, Height: 567})

	s, err = o.ScreenSize()
	require.NoError(t, err)
	assert.Equal(t, geometry.ScreenSize{Width: 1234, Height: 567}, s)
}

func TestDisplay_FindWindowMissing(t *testing.T) {
	t.Parallel()

	d := openDisplay(t, x11.Config{})

	_, err := d.FindWindow(0xfffffff0)
	require.ErrorIs(t, err, geometry.ErrWindowNotFound)
}
