package execs_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/termcam/pkg/execs"
)

func TestCommand_GetEnv(t *testing.T) {
	t.Parallel()

	base := []string{
		"PATH=/usr/bin",
		"HOME=/home/me",
		"DISPLAY=:0",
		"SECRET=hunter2",
		"V4L_DEBUG=1",
		"V4L_TRACE=2",
		"GST_DEBUG=3",
	}

	tcs := map[string]struct {
		env     []execs.EnvVar
		envFrom []execs.CallerRef
		want    []string
	}{
		"essential only": {
			want: []string{"DISPLAY=:0", "HOME=/home/me", "PATH=/usr/bin"},
		},
		"by name": {
			envFrom: []execs.CallerRef{{Name: "GST_DEBUG"}},
			want:    []string{"DISPLAY=:0", "GST_DEBUG=3", "HOME=/home/me", "PATH=/usr/bin"},
		},
		"by pattern": {
			envFrom: []execs.CallerRef{{Pattern: "^V4L_"}},
			want: []string{
				"DISPLAY=:0", "HOME=/home/me", "PATH=/usr/bin",
				"V4L_DEBUG=1", "V4L_TRACE=2",
			},
		},
		"literal overrides": {
			env:  []execs.EnvVar{{Name: "DISPLAY", Value: ":1"}},
			want: []string{"DISPLAY=:1", "HOME=/home/me", "PATH=/usr/bin"},
		},
		"value from caller": {
			env: []execs.EnvVar{{Name: "TOKEN", ValueFrom: &execs.CallerRef{Name: "SECRET"}}},
			want: []string{
				"DISPLAY=:0", "HOME=/home/me", "PATH=/usr/bin", "TOKEN=hunter2",
			},
		},
		"missing caller value and empty name": {
			env: []execs.EnvVar{
				{Name: "TOKEN", ValueFrom: &execs.CallerRef{Name: "NOPE"}},
				{Value: "orphan"},
			},
			want: []string{"DISPLAY=:0", "HOME=/home/me", "PATH=/usr/bin"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := execs.NewCommand(base, "ffmpeg")
			c.Env = tc.env
			c.EnvFrom = tc.envFrom

			require.NoError(t, c.Compile())
			assert.Equal(t, tc.want, c.GetEnv())
		})
	}
}

func TestCommand_CompileInvalidPattern(t *testing.T) {
	t.Parallel()

	c := execs.NewCommand(nil, "ffmpeg")
	c.EnvFrom = []execs.CallerRef{{Pattern: "["}}

	require.ErrorContains(t, c.Compile(), "envFrom[0]")
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ffmpeg -f v4l2", (&execs.Command{Command: "ffmpeg", Args: []string{"-f", "v4l2"}}).String())
	assert.Equal(t, "ffmpeg", (&execs.Command{Command: "ffmpeg"}).String())
}

func TestStart(t *testing.T) {
	t.Parallel()

	c := execs.NewCommand([]string{"PATH=/usr/bin:/bin"}, "sh", "-c", "printf frame; printf oops >&2")

	p, err := execs.Start(t.Context(), c)
	require.NoError(t, err)

	out, err := io.ReadAll(p.Stdout())
	require.NoError(t, err)
	assert.Equal(t, "frame", string(out))

	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
	assert.Equal(t, "oops", p.Stderr())
}

func TestStart_StopRunning(t *testing.T) {
	t.Parallel()

	c := execs.NewCommand([]string{"PATH=/usr/bin:/bin"}, "sh", "-c", "while :; do printf x; sleep 1; done")

	p, err := execs.Start(t.Context(), c)
	require.NoError(t, err)

	buf := make([]byte, 1)
	_, err = io.ReadFull(p.Stdout(), buf)
	require.NoError(t, err)

	require.NoError(t, p.Stop())
}

func TestStart_Errors(t *testing.T) {
	t.Parallel()

	_, err := execs.Start(t.Context(), execs.Command{})
	require.ErrorIs(t, err, execs.ErrEmptyCommand)

	_, err = execs.Start(t.Context(), execs.NewCommand(nil, "/nonexistent/"+strings.Repeat("x", 8)))
	require.ErrorIs(t, err, execs.ErrStart)
}
