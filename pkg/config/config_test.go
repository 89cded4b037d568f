package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/termcam/pkg/capture"
	"github.com/macropower/termcam/pkg/config"
	"github.com/macropower/termcam/pkg/geometry"
	"github.com/macropower/termcam/pkg/keys"
	"github.com/macropower/termcam/pkg/yaml"
)

func createTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()

	assert.Equal(t, config.APIVersion, cfg.APIVersion)
	assert.Equal(t, config.Kind, cfg.Kind)
	require.NotNil(t, cfg.Calibration)
	assert.Equal(t, geometry.DefaultCalibration, *cfg.Calibration)
	require.NotNil(t, cfg.Render)
	assert.Equal(t, 100*time.Millisecond, *cfg.Render.Delay)
	require.NotNil(t, cfg.Capture)
	assert.Equal(t, capture.SourceFFmpeg, cfg.Capture.Source)
	assert.NotNil(t, cfg.Display)
	require.NoError(t, cfg.Validate())
}

func TestConfigLoader_Default(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "termcam", "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path, false))

	cl, err := config.NewConfigLoaderFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cl.Validate())

	cfg, err := cl.Load()
	require.NoError(t, err)

	def := config.NewConfig()
	assert.Equal(t, *def.Calibration, *cfg.Calibration)
	assert.Equal(t, *def.Render.Delay, *cfg.Render.Delay)
	assert.Equal(t, def.Render.Quit.String(), cfg.Render.Quit.String())
	assert.Equal(t, def.Render.Ramp, cfg.Render.Ramp)
	assert.Equal(t, def.Capture.Source, cfg.Capture.Source)
	// Format and device are left to the platform defaults.
	assert.NotEmpty(t, cfg.Capture.FFmpeg.Format)
	assert.Equal(t, def.Capture.FFmpeg.Format, cfg.Capture.FFmpeg.Format)
	assert.Equal(t, def.Capture.FFmpeg.Device, cfg.Capture.FFmpeg.Device)
	assert.Equal(t, def.Capture.FFmpeg.Width, cfg.Capture.FFmpeg.Width)
	assert.Equal(t, def.Capture.FFmpeg.FrameRate, cfg.Capture.FFmpeg.FrameRate)
	assert.True(t, cfg.Capture.Files.Loop)
}

func TestConfigLoader_Validate(t *testing.T) {
	t.Parallel()

	header := "apiVersion: termcam.jacobcolvin.com/v1beta1\nkind: Configuration\n"

	tcs := map[string]struct {
		content string
		wantErr bool
	}{
		"minimal": {
			content: header,
		},
		"partial sections": {
			content: header + "render:\n  delay: 50ms\ncapture:\n  source: files\n  files:\n    path: ./frames\n",
		},
		"wrong api version": {
			content: "apiVersion: v1\nkind: Configuration\n",
			wantErr: true,
		},
		"missing kind": {
			content: "apiVersion: termcam.jacobcolvin.com/v1beta1\n",
			wantErr: true,
		},
		"unknown source": {
			content: header + "capture:\n  source: webcam\n",
			wantErr: true,
		},
		"negative cell width": {
			content: header + "calibration:\n  cellWidth: -1\n  cellHeight: 10\n",
			wantErr: true,
		},
		"unknown field": {
			content: header + "render:\n  fps: 30\n",
			wantErr: true,
		},
		"invalid yaml": {
			content: "apiVersion: [\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := config.NewConfigLoaderFromBytes([]byte(tc.content)).Validate()
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestConfigLoader_ValidateReportsLine(t *testing.T) {
	t.Parallel()

	content := "apiVersion: termcam.jacobcolvin.com/v1beta1\nkind: Configuration\ncapture:\n  source: webcam\n"

	err := config.NewConfigLoaderFromBytes([]byte(content)).Validate()

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Contains(t, err.Error(), "line 4")
}

func TestConfigLoader_Load(t *testing.T) {
	t.Parallel()

	header := "apiVersion: termcam.jacobcolvin.com/v1beta1\nkind: Configuration\n"

	tcs := map[string]struct {
		check   func(t *testing.T, cfg *config.Config)
		wantErr error
		content string
	}{
		"defaults filled": {
			content: header + "render:\n  delay: 40ms\n",
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				assert.Equal(t, 40*time.Millisecond, *cfg.Render.Delay)
				assert.Equal(t, "q/esc/⌃c", cfg.Render.Quit.String())
				assert.Equal(t, "ffmpeg", cfg.Capture.FFmpeg.Path)
			},
		},
		"zero calibration": {
			content: header + "calibration:\n  cellWidth: 0\n  cellHeight: 0\n",
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				assert.True(t, cfg.Calibration.IsZero())
			},
		},
		"negative calibration": {
			content: header + "calibration:\n  cellWidth: -2\n  cellHeight: 10\n",
			wantErr: geometry.ErrInvalidCalibration,
		},
		"unknown quit key": {
			content: header + "render:\n  quit:\n    description: quit\n    keys:\n      - code: hyper+q\n",
			wantErr: keys.ErrUnknownKey,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.NewConfigLoaderFromBytes([]byte(tc.content)).Load()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestNewConfigLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		want      error
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, "apiVersion: termcam.jacobcolvin.com/v1beta1\nkind: Configuration\n")
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			want: os.ErrNotExist,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			want: os.ErrInvalid,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.NewConfigLoaderFromFile(tc.setupFile(t))
			if tc.want != nil {
				require.ErrorIs(t, err, tc.want)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, config.WriteDefaultConfig(path, false))
	assert.FileExists(t, filepath.Join(dir, config.SchemaFileName))

	// Existing files are kept.
	require.NoError(t, os.WriteFile(path, []byte("custom"), 0o600))
	require.NoError(t, config.WriteDefaultConfig(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))

	// Forced writes back up the existing file.
	require.NoError(t, config.WriteDefaultConfig(path, true))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: Configuration")

	backups, err := filepath.Glob(filepath.Join(dir, "config.yaml.*.old"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	require.ErrorContains(t, config.WriteDefaultConfig(dir, false), "path is a directory")
}

func TestConfig_MarshalYAML(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()

	b, err := cfg.MarshalYAML()
	require.NoError(t, err)

	cl := config.NewConfigLoaderFromBytes(b)
	require.NoError(t, cl.Validate())

	got, err := cl.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

//nolint:paralleltest // Modifies the environment.
func TestGetPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/termcam/config.yaml", config.GetPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/me")
	assert.Equal(t, "/home/me/.config/termcam/config.yaml", config.GetPath())
}
