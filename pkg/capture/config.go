package capture

import (
	"runtime"

	"github.com/macropower/termcam/pkg/execs"
)

const (
	SourceFFmpeg = "ffmpeg"
	SourceFiles  = "files"
)

// Config selects and configures the capture source.
type Config struct {
	// FFmpeg configures the ffmpeg source.
	FFmpeg *FFmpegConfig `json:"ffmpeg,omitempty" jsonschema:"title=FFmpeg"`
	// Files configures the files source.
	Files *FilesConfig `json:"files,omitempty" jsonschema:"title=Files"`
	// Source is the capture source to use.
	Source string `json:"source,omitempty" jsonschema:"title=Source,enum=ffmpeg,enum=files"`
}

// FFmpegConfig configures capture through an ffmpeg child process.
type FFmpegConfig struct {
	// Path is the ffmpeg executable.
	Path string `json:"path,omitempty" jsonschema:"title=Path"`
	// Format is the ffmpeg input format, e.g. v4l2 or avfoundation.
	Format string `json:"format,omitempty" jsonschema:"title=Format"`
	// Device is the input device passed to ffmpeg's -i.
	Device string `json:"device,omitempty" jsonschema:"title=Device"`
	// ExtraArgs are additional input options, split with shell quoting rules.
	ExtraArgs string `json:"extraArgs,omitempty" jsonschema:"title=Extra Arguments"`
	// Env contains environment variable definitions for ffmpeg.
	Env []execs.EnvVar `json:"env,omitempty" jsonschema:"title=Environment Variables"`
	// EnvFrom passes caller variables through to ffmpeg.
	EnvFrom []execs.CallerRef `json:"envFrom,omitempty" jsonschema:"title=Environment Variables From"`
	// Width is the frame width requested from the device.
	Width int `json:"width,omitempty" jsonschema:"title=Width,minimum=1"`
	// Height is the frame height requested from the device.
	Height int `json:"height,omitempty" jsonschema:"title=Height,minimum=1"`
	// FrameRate is the frame rate requested from the device.
	FrameRate int `json:"frameRate,omitempty" jsonschema:"title=Frame Rate,minimum=1"`
}

// FilesConfig configures playback of still images.
type FilesConfig struct {
	// Path is an image file or a directory of images, played in name order.
	Path string `json:"path,omitempty" jsonschema:"title=Path"`
	// Loop restarts playback after the last image.
	Loop bool `json:"loop,omitempty" jsonschema:"title=Loop"`
}

func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults fills unset fields.
func (c *Config) EnsureDefaults() {
	if c.Source == "" {
		c.Source = SourceFFmpeg
	}

	if c.FFmpeg == nil {
		c.FFmpeg = &FFmpegConfig{}
	}

	c.FFmpeg.EnsureDefaults()

	if c.Files == nil {
		c.Files = &FilesConfig{}
	}
}

func (c *FFmpegConfig) EnsureDefaults() {
	if c.Path == "" {
		c.Path = "ffmpeg"
	}

	if c.Format == "" {
		c.Format = defaultFormat()
	}

	if c.Device == "" {
		c.Device = defaultDevice()
	}

	if c.Width == 0 {
		c.Width = 640
	}

	if c.Height == 0 {
		c.Height = 480
	}

	if c.FrameRate == 0 {
		c.FrameRate = 30
	}
}

func defaultFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	}

	return "v4l2"
}

func defaultDevice() string {
	switch runtime.GOOS {
	case "darwin":
		return "0"
	case "windows":
		return "video=Integrated Camera"
	}

	return "/dev/video0"
}
