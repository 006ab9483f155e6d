// Morphological operations over registered kernels
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

func applyMorphology(env Env, input gocv.Mat, params Params) (gocv.Mat, error) {
	p, ok := params.(MorphParams)
	if !ok {
		return gocv.NewMat(), fmt.Errorf("%w: expected morphology params, got %T", ErrInvalidParameter, params)
	}
	if env.Kernels == nil {
		return gocv.NewMat(), fmt.Errorf("no kernel source for %s step", p.Kind())
	}

	k, err := env.Kernels.Kernel(p.Kernel)
	if err != nil {
		return gocv.NewMat(), err
	}

	kernel, err := k.Mat()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("kernel %q: %w", k.Name, err)
	}
	defer kernel.Close()

	return env.Ops.Morph(input, p.Op, kernel, p.Iterations)
}
