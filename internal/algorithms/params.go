package algorithms

import (
	"fmt"

	"layer-pipeline/internal/vision"
)

// ColorThresholdParams keeps pixels near Color; Factor 100 is tightest, 0 keeps everything
type ColorThresholdParams struct {
	Color  RGB
	Factor int
}

func (p ColorThresholdParams) Kind() Kind { return KindColorThreshold }

func (p ColorThresholdParams) Validate() error {
	if err := p.Color.Validate(); err != nil {
		return err
	}
	return validateFactor(p.Factor)
}

// Bounds returns the low and high clamps for the mask
func (p ColorThresholdParams) Bounds() (Triple, Triple, error) {
	low, err := LowerBound(p.Color, p.Factor)
	if err != nil {
		return Triple{}, Triple{}, err
	}
	high, err := UpperBound(p.Color, p.Factor)
	if err != nil {
		return Triple{}, Triple{}, err
	}
	return low, high, nil
}

// CannyParams holds the hysteresis thresholds of an edge detection step.
// The step is registered but has no transform yet.
type CannyParams struct {
	Threshold1 float64
	Threshold2 float64
}

func (p CannyParams) Kind() Kind { return KindCanny }

func (p CannyParams) Validate() error { return nil }

// MorphParams applies a registered kernel Iterations times
type MorphParams struct {
	Op         vision.MorphOp
	Kernel     string
	Iterations int
}

func (p MorphParams) Kind() Kind {
	switch p.Op {
	case vision.MorphDilate:
		return KindDilate
	case vision.MorphOpen:
		return KindOpen
	case vision.MorphClose:
		return KindClose
	}
	return KindErode
}

func (p MorphParams) Validate() error {
	switch p.Op {
	case vision.MorphErode, vision.MorphDilate, vision.MorphOpen, vision.MorphClose:
	default:
		return fmt.Errorf("%w: unknown morphological operation %v", ErrInvalidParameter, p.Op)
	}
	if p.Kernel == "" {
		return fmt.Errorf("%w: morphology step needs a kernel name", ErrInvalidParameter)
	}
	if p.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidParameter, p.Iterations)
	}
	return nil
}

// MorphOpFor maps a morphology kind to its operation
func MorphOpFor(kind Kind) (vision.MorphOp, error) {
	switch kind {
	case KindErode:
		return vision.MorphErode, nil
	case KindDilate:
		return vision.MorphDilate, nil
	case KindOpen:
		return vision.MorphOpen, nil
	case KindClose:
		return vision.MorphClose, nil
	}
	return 0, fmt.Errorf("%w: %s is not a morphology kind", ErrInvalidParameter, kind)
}
