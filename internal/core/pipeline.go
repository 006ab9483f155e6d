// Pipeline: a source image plus named steps and kernels applied to it
package core

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"layer-pipeline/internal/algorithms"
	"layer-pipeline/internal/display"
	"layer-pipeline/internal/layers"
	"layer-pipeline/internal/metrics"
	"layer-pipeline/internal/vision"
)

// Slider label suffixes of a colour threshold step
const (
	SuffixRed    = "red"
	SuffixGreen  = "green"
	SuffixBlue   = "blue"
	SuffixFactor = "factor"
)

// Options controls windows and the render loop
type Options struct {
	Window         string
	ControlsWindow string
	PollMs         int
	CancelKey      int
}

func DefaultOptions() Options {
	return Options{
		Window:         "output",
		ControlsWindow: "trackbar",
		PollMs:         1,
		CancelKey:      display.KeyEscape,
	}
}

// Pipeline owns one source image and the step and kernel registries
type Pipeline struct {
	imageData *ImageData
	steps     *layers.Stack
	kernels   *layers.KernelSet
	handlers  *algorithms.Handlers
	ops       vision.Ops
	display   display.Display
	evaluator *metrics.Evaluator
	logger    logrus.FieldLogger
	opts      Options
}

// NewPipeline clones img; the caller keeps ownership of img
func NewPipeline(img gocv.Mat, ops vision.Ops, disp display.Display, logger logrus.FieldLogger, opts Options) (*Pipeline, error) {
	imageData, err := NewImageData(img)
	if err != nil {
		return nil, fmt.Errorf("source image: %w", err)
	}

	meta := imageData.GetMetadata()
	logger.WithFields(logrus.Fields{
		"width":    meta.Width,
		"height":   meta.Height,
		"channels": meta.Channels,
	}).Debug("PIPELINE: Created")

	return &Pipeline{
		imageData: imageData,
		steps:     layers.NewStack(),
		kernels:   layers.NewKernelSet(),
		handlers:  algorithms.NewHandlers(),
		ops:       ops,
		display:   disp,
		evaluator: metrics.NewEvaluator(),
		logger:    logger,
		opts:      opts,
	}, nil
}

// Close releases the source image and the last rendered frame
func (p *Pipeline) Close() {
	p.imageData.Close()
}

// Handlers exposes the dispatch table so callers can add transforms for new kinds
func (p *Pipeline) Handlers() *algorithms.Handlers {
	return p.handlers
}

// Result returns a copy of the most recently rendered frame
func (p *Pipeline) Result() gocv.Mat {
	return p.imageData.GetProcessed()
}

// RegisterColorThreshold appends a colour threshold step and requests its four sliders
func (p *Pipeline) RegisterColorThreshold(name string, color algorithms.RGB, factor int) error {
	params := algorithms.ColorThresholdParams{Color: color, Factor: factor}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("step %q: %w", name, err)
	}
	if p.steps.Has(name) {
		err := fmt.Errorf("%w: %q", layers.ErrDuplicateName, name)
		p.logRejected(name, err)
		return err
	}

	if err := p.createControls(name, params); err != nil {
		return fmt.Errorf("step %q controls: %w", name, err)
	}

	return p.addStep(name, params)
}

// RegisterCanny appends an edge detection placeholder. Rendering it fails with
// algorithms.ErrUnsupportedStepKind until a handler is registered for it.
func (p *Pipeline) RegisterCanny(name string, threshold1, threshold2 float64) error {
	return p.addStep(name, algorithms.CannyParams{Threshold1: threshold1, Threshold2: threshold2})
}

// RegisterMorphology appends an erode, dilate, open or close step using a named kernel.
// The kernel is looked up at render time.
func (p *Pipeline) RegisterMorphology(name string, op vision.MorphOp, kernel string, iterations int) error {
	params := algorithms.MorphParams{Op: op, Kernel: kernel, Iterations: iterations}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("step %q: %w", name, err)
	}
	return p.addStep(name, params)
}

func (p *Pipeline) addStep(name string, params algorithms.Params) error {
	if err := p.steps.Add(name, params); err != nil {
		p.logRejected(name, err)
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"step": name,
		"kind": params.Kind(),
	}).Info("PIPELINE: Step added")
	return nil
}

func (p *Pipeline) logRejected(name string, err error) {
	p.logger.WithError(err).WithField("step", name).Warn("PIPELINE: Step rejected")
}

// StepNames returns step names in application order
func (p *Pipeline) StepNames() []string {
	return p.steps.Names()
}

func (p *Pipeline) Step(name string) (layers.Step, error) {
	return p.steps.Get(name)
}

func (p *Pipeline) RemoveStep(name string) error {
	if err := p.steps.Remove(name); err != nil {
		return err
	}
	p.logger.WithField("step", name).Info("PIPELINE: Step removed")
	return nil
}

// RegisterKernel creates a width x height all-ones structuring element
func (p *Pipeline) RegisterKernel(name string, width, height int) error {
	if err := p.kernels.Add(name, width, height); err != nil {
		return err
	}
	p.logger.WithFields(logrus.Fields{
		"kernel": name,
		"rows":   width,
		"cols":   height,
	}).Info("PIPELINE: Kernel added")
	return nil
}

func (p *Pipeline) KernelNames() []string {
	return p.kernels.Names()
}

func (p *Pipeline) Kernel(name string) (algorithms.Kernel, error) {
	return p.kernels.Kernel(name)
}

// KernelShape returns (rows, cols) of the named kernel
func (p *Pipeline) KernelShape(name string) (int, int, error) {
	return p.kernels.Shape(name)
}

func (p *Pipeline) RemoveKernel(name string) error {
	if err := p.kernels.Remove(name); err != nil {
		return err
	}
	p.logger.WithField("kernel", name).Info("PIPELINE: Kernel removed")
	return nil
}

// ControlLabel names the slider for one role of a step
func ControlLabel(step, suffix string) string {
	return step + suffix
}

func (p *Pipeline) createControls(name string, params algorithms.ColorThresholdParams) error {
	sliders := []display.Slider{
		{Label: ControlLabel(name, SuffixRed), Max: algorithms.MaxChannel, Value: params.Color.R},
		{Label: ControlLabel(name, SuffixGreen), Max: algorithms.MaxChannel, Value: params.Color.G},
		{Label: ControlLabel(name, SuffixBlue), Max: algorithms.MaxChannel, Value: params.Color.B},
		{Label: ControlLabel(name, SuffixFactor), Max: algorithms.MaxFactor, Value: params.Factor},
	}

	for _, s := range sliders {
		s.Window = p.opts.ControlsWindow
		s.Min = 0
		s.OnChange = p.logSliderChange(s.Label)
		if err := p.display.CreateSlider(s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) logSliderChange(label string) func(int) {
	return func(value int) {
		p.logger.WithFields(logrus.Fields{
			"slider": label,
			"value":  value,
		}).Debug("PIPELINE: Slider moved")
	}
}
