package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/macropower/termcam/pkg/ascii"
	"github.com/macropower/termcam/pkg/capture"
	"github.com/macropower/termcam/pkg/config"
	"github.com/macropower/termcam/pkg/frame"
	"github.com/macropower/termcam/pkg/geometry"
	"github.com/macropower/termcam/pkg/log"
	"github.com/macropower/termcam/pkg/render"
	"github.com/macropower/termcam/pkg/terminal"
	"github.com/macropower/termcam/pkg/x11"
)

const (
	cmdExamples = `  # Render the default camera into the current terminal window:
  termcam "$WINDOWID"

  # Find a window id by clicking on it:
  termcam "$(xwininfo | awk '/Window id:/ {print $4}')"

  # Override the cell size measured for your font:
  termcam "$WINDOWID" --cell-width 8 --cell-height 16

  # Play a directory of images instead of a camera:
  termcam "$WINDOWID" --source files --path ./frames

  # Export render spans to a local collector:
  termcam "$WINDOWID" --otlp-endpoint localhost:4317`
)

// ErrInvalidWindowID is returned when the window id argument is not an
// unsigned 32-bit integer.
var ErrInvalidWindowID = errors.New("invalid window id")

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type RunArgs struct {
	*RootArgs

	ConfigPath   string
	Source       string
	Device       string
	Path         string
	Display      string
	Ramp         string
	OTLPEndpoint string
	CellWidth    float64
	CellHeight   float64
	Delay        time.Duration
	WindowID     uint32
	WriteConfig  bool
	ShowConfig   bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.ConfigPath, "config", "", "Path to the termcam configuration file")
	cmd.Flags().Float64Var(&ra.CellWidth, "cell-width", 0, "Pixel width of one terminal cell, 0 derives it from the terminal")
	cmd.Flags().Float64Var(&ra.CellHeight, "cell-height", 0, "Pixel height of one terminal cell, 0 derives it from the terminal")
	cmd.Flags().DurationVar(&ra.Delay, "delay", render.DefaultDelay, "Pause after each printed frame")
	cmd.Flags().StringVar(&ra.Ramp, "ramp", string(ascii.DefaultRamp), "Glyphs from darkest to lightest pixel")
	cmd.Flags().StringVar(&ra.Source, "source", capture.SourceFFmpeg, "Capture source, one of: ffmpeg, files")
	cmd.Flags().StringVar(&ra.Device, "device", "", "Input device passed to ffmpeg")
	cmd.Flags().StringVar(&ra.Path, "path", "", "Image file or directory played by the files source")
	cmd.Flags().StringVar(&ra.Display, "display", "", "X display used to locate the window")
	cmd.Flags().StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP gRPC endpoint")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the default configuration file and exit")
	cmd.Flags().BoolVar(&ra.ShowConfig, "show-config", false, "Print the active configuration and exit")

	err := cmd.MarkFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}

	err = cmd.RegisterFlagCompletionFunc("source",
		cobra.FixedCompletions([]string{capture.SourceFFmpeg, capture.SourceFiles}, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "run [window-id]",
		Short:             "Default command, can be used explicitly",
		Example:           cmdExamples,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if ra.WriteConfig || ra.ShowConfig {
					return run(cmd, ra)
				}

				return fmt.Errorf("%w: argument is required", ErrInvalidWindowID)
			}

			id, err := ParseWindowID(args[0])
			if err != nil {
				return err
			}

			ra.WindowID = id

			return run(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

// ParseWindowID parses an X window id in decimal, or hexadecimal with a 0x
// prefix as printed by xwininfo.
func ParseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidWindowID, s, err)
	}

	return uint32(id), nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func (ra *RunArgs) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("cell-width") {
		cfg.Calibration.CellWidth = ra.CellWidth
	}

	if flags.Changed("cell-height") {
		cfg.Calibration.CellHeight = ra.CellHeight
	}

	if flags.Changed("delay") {
		cfg.Render.Delay = &ra.Delay
	}

	if flags.Changed("ramp") {
		cfg.Render.Ramp = ascii.Ramp(ra.Ramp)
	}

	if flags.Changed("source") {
		cfg.Capture.Source = ra.Source
	}

	if flags.Changed("device") {
		cfg.Capture.FFmpeg.Device = ra.Device
	}

	if flags.Changed("path") {
		cfg.Capture.Files.Path = ra.Path
	}

	if flags.Changed("display") {
		cfg.Display.Name = ra.Display
	}
}

func loadConfig(cmd *cobra.Command, ra *RunArgs) (*config.Config, string, error) {
	configPath := ra.ConfigPath
	if configPath == "" {
		configPath = config.GetPath()
	}

	err := config.WriteDefaultConfig(configPath, false)
	if err != nil {
		slog.Error("write default config", slog.Any("err", err))
	}
	if ra.WriteConfig {
		// If there was an error, it should be fatal.
		return nil, configPath, err
	}

	cfg := config.NewConfig()

	cl, err := config.NewConfigLoaderFromFile(configPath)
	if err != nil {
		slog.Warn("could not read config, using defaults", slog.Any("err", err))
	} else {
		err = cl.Validate()
		if err != nil {
			return nil, configPath, fmt.Errorf("invalid config %q: %w", configPath, err)
		}

		cfg, err = cl.Load()
		if err != nil {
			return nil, configPath, fmt.Errorf("invalid config %q: %w", configPath, err)
		}
	}

	ra.applyFlags(cmd, cfg)

	err = cfg.Validate()
	if err != nil {
		return nil, configPath, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, configPath, nil
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	cfg, configPath, err := loadConfig(cmd, ra)
	if err != nil || ra.WriteConfig {
		return err
	}

	if ra.ShowConfig {
		slog.Info("active configuration", slog.String("path", configPath))

		yamlBytes, err := cfg.MarshalYAML()
		if err != nil {
			return fmt.Errorf("marshal config yaml: %w", err)
		}

		mustN(fmt.Fprint(cmd.OutOrStdout(), string(yamlBytes)))

		return nil
	}

	ctx := cmd.Context()

	shutdownTracing, err := setupTracing(ctx, ra.OTLPEndpoint)
	if err != nil {
		return err
	}

	defer func() {
		err := shutdownTracing(context.WithoutCancel(ctx))
		if err != nil {
			slog.Warn("shutdown tracing", slog.Any("err", err))
		}
	}()

	display, err := x11.Open(*cfg.Display)
	if err != nil {
		return err
	}
	defer display.Close()

	screen, err := display.ScreenSize()
	if err != nil {
		return fmt.Errorf("screen size: %w", err)
	}

	slog.Debug("screen size", slog.String("size", screen.String()))

	g, err := geometry.NewResolver(display, terminal.NewTTY(os.Stdout),
		geometry.WithCalibration(*cfg.Calibration),
	).Resolve(ra.WindowID)
	if err != nil {
		return fmt.Errorf("resolve geometry: %w", err)
	}

	provider, err := capture.NewProvider(cfg.Capture, os.Environ())
	if err != nil {
		return fmt.Errorf("create capture provider: %w", err)
	}

	mustN(fmt.Fprintln(cmd.ErrOrStderr(), statusStyle.Render(
		fmt.Sprintf("rendering window 0x%x, press %s to quit", ra.WindowID, cfg.Render.Quit),
	)))

	state, stats, err := runLoop(ctx, ra, cfg, provider, frame.NewAdapter(screen), g)

	slog.Info("render stopped",
		slog.String("state", state.String()),
		slog.Any("stats", stats),
	)

	if err != nil {
		mustN(fmt.Fprintln(cmd.ErrOrStderr(), failStyle.Render("render failed")))

		return err
	}

	return nil
}

// runLoop owns the terminal for the duration of the render loop. Logs are
// buffered while it runs and flushed after the terminal is restored.
func runLoop(
	ctx context.Context,
	ra *RunArgs,
	cfg *config.Config,
	provider capture.Provider,
	adapter *frame.Adapter,
	g geometry.Geometry,
) (render.State, render.Stats, error) {
	prevLogger := slog.Default()

	logBuf := log.NewCircularBuffer(100)
	logHandler, err := log.CreateHandlerWithStrings(logBuf, ra.LogLevel, ra.LogFormat)
	if err != nil {
		return render.StateFailed, render.Stats{}, fmt.Errorf("create log handler: %w", err)
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// Package-level slog calls and context loggers both go to the buffer.
	ctx = log.NewContext(ctx, logger)

	defer func() {
		slog.SetDefault(prevLogger)
		flushLogs(os.Stderr, logBuf)
	}()

	session, err := terminal.Setup(os.Stdin, os.Stdout)
	if err != nil {
		return render.StateFailed, render.Stats{}, fmt.Errorf("setup terminal: %w", err)
	}

	opts := []render.LoopOpt{
		render.WithDelay(*cfg.Render.Delay),
		render.WithEncoder(ascii.NewEncoder(ascii.WithRamp(cfg.Render.Ramp))),
	}

	var watcher *terminal.QuitWatcher

	if session.Raw() {
		watcher, err = terminal.NewQuitWatcher(os.Stdin, cfg.Render.Quit)
		if err != nil {
			return render.StateFailed, render.Stats{}, errors.Join(err, session.Close())
		}

		opts = append(opts, render.WithCanceller(watcher))
	}

	loop := render.NewLoop(provider, adapter, g, session, opts...)
	state, runErr := loop.Run(ctx)

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}

	if watcher != nil {
		err = watcher.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("stop key watcher: %w", err))
		}
	}

	err = session.Close()
	if err != nil {
		errs = append(errs, fmt.Errorf("restore terminal: %w", err))
	}

	return state, loop.Stats(), errors.Join(errs...)
}

func flushLogs(w io.Writer, buf *log.CircularBuffer) {
	slog.Debug("flush logs to console",
		slog.Int("count", buf.Size()),
		slog.Int("max", buf.Capacity()),
		slog.Int("dropped", buf.Dropped()),
	)

	_, err := buf.WriteTo(w)
	if err != nil {
		panic(err)
	}
}
