package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"layer-pipeline/internal/vision"
)

// ApplyColorThreshold zeroes the pixels of input outside [low, high] per channel
// and keeps the original colour of the rest.
func ApplyColorThreshold(ops vision.Ops, input gocv.Mat, low, high Triple) (gocv.Mat, error) {
	mask, err := ops.InRange(input, low.Scalar(), high.Scalar())
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("color range: %w", err)
	}
	defer mask.Close()

	wide, err := ops.GrayToBGR(mask)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("broadcast mask: %w", err)
	}
	defer wide.Close()

	working := ops.Clone(input)
	defer working.Close()

	out, err := ops.BitwiseAnd(wide, working)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("apply mask: %w", err)
	}
	return out, nil
}

func applyColorThreshold(env Env, input gocv.Mat, params Params) (gocv.Mat, error) {
	p, ok := params.(ColorThresholdParams)
	if !ok {
		return gocv.NewMat(), fmt.Errorf("%w: expected color threshold params, got %T", ErrInvalidParameter, params)
	}

	low, high, err := p.Bounds()
	if err != nil {
		return gocv.NewMat(), err
	}
	return ApplyColorThreshold(env.Ops, input, low, high)
}
