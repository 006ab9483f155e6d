// Layer pipeline: colour thresholds and morphology over one image, shown in
// an OpenCV or Fyne window with live sliders.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"gopkg.in/natefinch/lumberjack.v2"

	"layer-pipeline/internal/config"
	"layer-pipeline/internal/core"
	"layer-pipeline/internal/display"
	imageio "layer-pipeline/internal/io"
	"layer-pipeline/internal/vision"
)

const (
	AppName    = "Layer Pipeline"
	AppID      = "com.strauhmanis.layer-pipeline"
	AppVersion = "1.0.0"
)

type options struct {
	configPath   string
	pipelinePath string
	imagePath    string
	outPath      string
	backend      string
	interactive  bool
	debug        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a TOML settings file")
	flag.StringVar(&opts.pipelinePath, "pipeline", "", "Path to an HCL pipeline definition")
	flag.StringVar(&opts.imagePath, "image", "", "Source image")
	flag.StringVar(&opts.outPath, "out", "", "Apply the pipeline once and save the result here instead of opening a window")
	flag.StringVar(&opts.backend, "backend", "", "Display backend: highgui or fyne")
	flag.BoolVar(&opts.interactive, "interactive", false, "Re-read sliders on every frame")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	settings, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts.merge(&settings)
	if err := settings.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := initLogger(settings.Log, opts.debug)
	logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"debug_mode":  opts.debug,
		"backend":     settings.Display.Backend,
		"interactive": settings.Render.Interactive,
	}).Info("Starting " + AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings, opts.outPath, logger); err != nil {
		logger.WithError(err).Error("Application failed")
		stop()
		os.Exit(1)
	}
	logger.Info("Application shutting down gracefully")
}

// merge lets command line flags override the settings file
func (o options) merge(s *config.Settings) {
	if o.pipelinePath != "" {
		s.Render.Pipeline = o.pipelinePath
	}
	if o.imagePath != "" {
		s.Render.Image = o.imagePath
	}
	if o.backend != "" {
		s.Display.Backend = o.backend
	}
	if o.interactive {
		s.Render.Interactive = true
	}
	if o.debug {
		s.Log.Level = logrus.DebugLevel.String()
	}
}

func run(ctx context.Context, settings config.Settings, outPath string, logger *logrus.Logger) error {
	if settings.Render.Image == "" {
		return errors.New("no source image: set -image or render.image")
	}

	loader := imageio.NewImageLoader(logger)
	src, err := loader.LoadImage(settings.Render.Image)
	if err != nil {
		return err
	}
	defer src.Close()

	if outPath != "" {
		// headless runs never reach the display; sliders land on the mock
		return runHeadless(settings, src, display.NewMock(), loader, outPath, logger)
	}

	if settings.Display.Backend == config.BackendFyne {
		return runFyne(logger, func(disp display.Display) error {
			return render(ctx, settings, src, disp, logger)
		})
	}
	return render(ctx, settings, src, display.NewHighGUI(logger), logger)
}

// buildPipeline wraps src and registers the pipeline file, if any
func buildPipeline(settings config.Settings, src gocv.Mat, disp display.Display, logger logrus.FieldLogger) (*core.Pipeline, error) {
	p, err := core.NewPipeline(src, vision.NewOpenCV(), disp, logger, settings.Display.Options())
	if err != nil {
		return nil, err
	}

	if settings.Render.Pipeline == "" {
		logger.Warn("No pipeline file given, rendering the source image unchanged")
		return p, nil
	}

	pf, err := config.LoadPipeline(settings.Render.Pipeline)
	if err != nil {
		p.Close()
		return nil, err
	}
	if err := pf.Apply(p); err != nil {
		p.Close()
		return nil, fmt.Errorf("pipeline %s: %w", settings.Render.Pipeline, err)
	}

	logger.WithFields(logrus.Fields{
		"steps":   p.StepNames(),
		"kernels": p.KernelNames(),
	}).Info("Pipeline loaded")
	return p, nil
}

func render(ctx context.Context, settings config.Settings, src gocv.Mat, disp display.Display, logger logrus.FieldLogger) error {
	p, err := buildPipeline(settings, src, disp, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	if settings.Render.Interactive {
		err = p.RenderInteractive(ctx)
	} else {
		err = p.Render(ctx)
	}
	if core.IsCancelled(err) {
		return nil
	}
	return err
}

func runHeadless(settings config.Settings, src gocv.Mat, disp display.Display, loader *imageio.ImageLoader, outPath string, logger logrus.FieldLogger) error {
	p, err := buildPipeline(settings, src, disp, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	frame, err := p.Process()
	if err != nil {
		return err
	}
	defer frame.Close()

	return loader.SaveImage(frame, outPath)
}

// runFyne runs the toolkit on the main goroutine and fn on a worker, quitting
// the app once fn returns
func runFyne(logger logrus.FieldLogger, fn func(display.Display) error) error {
	a := app.NewWithID(AppID)
	disp := display.NewFyne(a, logger)

	errc := make(chan error, 1)
	go func() {
		errc <- fn(disp)
		fyne.Do(a.Quit)
	}()

	// closing a window reaches the render loop as ESC, so fn always returns
	a.Run()
	return <-errc
}

// initLogger initializes the logger with appropriate level and output
func initLogger(settings config.LogSettings, debugMode bool) *logrus.Logger {
	logger := logrus.New()

	var out io.Writer = os.Stdout
	if settings.File != "" {
		out = &lumberjack.Logger{
			Filename:   settings.File,
			MaxSize:    settings.MaxSizeMB,
			MaxBackups: settings.MaxBackups,
		}
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(settings.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if debugMode || settings.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   debugMode && settings.File == "",
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
