// Applying steps to the source image and the display loops
package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"layer-pipeline/internal/algorithms"
	"layer-pipeline/internal/layers"
)

// ParamSource picks the parameters a step is applied with for one frame
type ParamSource func(step layers.Step) (algorithms.Params, error)

// StoredParams applies every step with the parameters it was registered with
func StoredParams(step layers.Step) (algorithms.Params, error) {
	return step.Params, nil
}

// ApplyColorThreshold masks a fresh copy of the source image with [low, high]
func (p *Pipeline) ApplyColorThreshold(low, high algorithms.Triple) (gocv.Mat, error) {
	source := p.imageData.GetOriginal()
	defer source.Close()

	return algorithms.ApplyColorThreshold(p.ops, source, low, high)
}

// Apply renders one frame: every step in order, starting from a fresh copy of
// the source. Each step consumes the previous step's output.
func (p *Pipeline) Apply(params ParamSource) (gocv.Mat, error) {
	env := algorithms.Env{Ops: p.ops, Kernels: p.kernels}
	current := p.imageData.GetOriginal()

	for _, step := range p.steps.Steps() {
		stepParams, err := params(step)
		if err != nil {
			current.Close()
			return gocv.NewMat(), fmt.Errorf("step %q parameters: %w", step.Name, err)
		}

		next, err := p.handlers.Apply(env, current, stepParams)
		current.Close()
		if err != nil {
			next.Close()
			return gocv.NewMat(), fmt.Errorf("step %q: %w", step.Name, err)
		}
		current = next
	}

	if err := p.imageData.SetProcessed(current); err != nil {
		current.Close()
		return gocv.NewMat(), err
	}
	return current, nil
}

// Process applies the stored parameters once without touching the display
func (p *Pipeline) Process() (gocv.Mat, error) {
	return p.Apply(StoredParams)
}

// LiveParams reads the current slider values for steps that have controls
func (p *Pipeline) LiveParams(step layers.Step) (algorithms.Params, error) {
	if step.Kind != algorithms.KindColorThreshold {
		return step.Params, nil
	}

	read := func(suffix string) (int, error) {
		return p.display.SliderValue(p.opts.ControlsWindow, ControlLabel(step.Name, suffix))
	}

	var (
		params algorithms.ColorThresholdParams
		err    error
	)
	if params.Color.R, err = read(SuffixRed); err != nil {
		return nil, err
	}
	if params.Color.G, err = read(SuffixGreen); err != nil {
		return nil, err
	}
	if params.Color.B, err = read(SuffixBlue); err != nil {
		return nil, err
	}
	if params.Factor, err = read(SuffixFactor); err != nil {
		return nil, err
	}
	return params, nil
}

// Render applies the stored parameters once and shows the result until the
// cancel key is pressed or ctx is done. All windows are destroyed on return.
func (p *Pipeline) Render(ctx context.Context) error {
	log := p.sessionLogger("static")

	if err := p.display.CreateWindow(p.opts.Window); err != nil {
		return fmt.Errorf("create window %q: %w", p.opts.Window, err)
	}
	defer p.display.DestroyAllWindows()

	start := time.Now()
	frame, err := p.Process()
	if err != nil {
		log.WithError(err).Error("PIPELINE: Render failed")
		return err
	}
	defer frame.Close()

	p.logMetrics(log, frame, time.Since(start))

	return p.loop(ctx, log, func() (gocv.Mat, bool, error) {
		return frame, false, nil
	})
}

// RenderInteractive re-reads the sliders and re-applies every step on each
// frame until the cancel key is pressed or ctx is done.
func (p *Pipeline) RenderInteractive(ctx context.Context) error {
	log := p.sessionLogger("interactive")

	if err := p.display.CreateWindow(p.opts.Window); err != nil {
		return fmt.Errorf("create window %q: %w", p.opts.Window, err)
	}
	defer p.display.DestroyAllWindows()

	// controls from registration may have been destroyed by an earlier render
	for _, step := range p.steps.Steps() {
		if params, ok := step.Params.(algorithms.ColorThresholdParams); ok {
			if err := p.createControls(step.Name, params); err != nil {
				return fmt.Errorf("step %q controls: %w", step.Name, err)
			}
		}
	}

	return p.loop(ctx, log, func() (gocv.Mat, bool, error) {
		frame, err := p.Apply(p.LiveParams)
		return frame, true, err
	})
}

// loop shows frames and polls for the cancel key. next returns the frame to
// show and whether the loop owns it.
func (p *Pipeline) loop(ctx context.Context, log logrus.FieldLogger, next func() (gocv.Mat, bool, error)) error {
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			log.WithField("frames", frames).Info("PIPELINE: Render cancelled")
			return err
		}

		frame, owned, err := next()
		if err != nil {
			log.WithError(err).Error("PIPELINE: Frame failed")
			return err
		}

		err = p.display.Show(p.opts.Window, frame)
		if owned {
			frame.Close()
		}
		if err != nil {
			return fmt.Errorf("show frame: %w", err)
		}
		frames++

		if key := p.display.PollKey(p.opts.PollMs); key == p.opts.CancelKey {
			log.WithField("frames", frames).Info("PIPELINE: Render finished")
			return nil
		}
	}
}

func (p *Pipeline) sessionLogger(mode string) logrus.FieldLogger {
	log := p.logger.WithFields(logrus.Fields{
		"session": uuid.NewString(),
		"mode":    mode,
		"steps":   p.steps.Len(),
	})
	log.Info("PIPELINE: Render started")
	return log
}

func (p *Pipeline) logMetrics(log logrus.FieldLogger, frame gocv.Mat, elapsed time.Duration) {
	source := p.imageData.GetOriginal()
	defer source.Close()

	fields := logrus.Fields{"duration_ms": elapsed.Milliseconds()}
	for name, value := range p.evaluator.CalculateAll(source, frame) {
		// JSON has no encoding for infinite PSNR
		if math.IsInf(value, 0) || math.IsNaN(value) {
			continue
		}
		fields[name] = value
	}
	log.WithFields(fields).Info("PIPELINE: Frame processed")
}

// IsCancelled reports whether err only signals a cancelled render
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
