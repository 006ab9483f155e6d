// Image-processing primitives used by pipeline steps
package vision

import (
	"fmt"

	"gocv.io/x/gocv"
)

// MorphOp selects a morphological transform
type MorphOp int

const (
	MorphErode MorphOp = iota
	MorphDilate
	MorphOpen
	MorphClose
)

func (op MorphOp) String() string {
	switch op {
	case MorphErode:
		return "erode"
	case MorphDilate:
		return "dilate"
	case MorphOpen:
		return "open"
	case MorphClose:
		return "close"
	}
	return fmt.Sprintf("MorphOp(%d)", int(op))
}

// Ops is the capability set the renderer needs from an image library.
// Every method returns a new Mat owned by the caller; inputs are never modified.
type Ops interface {
	Clone(src gocv.Mat) gocv.Mat
	InRange(src gocv.Mat, low, high gocv.Scalar) (gocv.Mat, error)
	GrayToBGR(mask gocv.Mat) (gocv.Mat, error)
	BitwiseAnd(a, b gocv.Mat) (gocv.Mat, error)
	Morph(src gocv.Mat, op MorphOp, kernel gocv.Mat, iterations int) (gocv.Mat, error)
}

// OpenCV implements Ops on top of gocv
type OpenCV struct{}

func NewOpenCV() *OpenCV {
	return &OpenCV{}
}

func (o *OpenCV) Clone(src gocv.Mat) gocv.Mat {
	return src.Clone()
}

// InRange builds a single-channel mask of the pixels whose channels all fall in [low, high]
func (o *OpenCV) InRange(src gocv.Mat, low, high gocv.Scalar) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	mask := gocv.NewMat()
	gocv.InRangeWithScalar(src, low, high, &mask)
	return mask, nil
}

// GrayToBGR broadcasts a single-channel mask to three channels
func (o *OpenCV) GrayToBGR(mask gocv.Mat) (gocv.Mat, error) {
	if mask.Empty() {
		return gocv.NewMat(), fmt.Errorf("mask is empty")
	}
	if mask.Channels() != 1 {
		return gocv.NewMat(), fmt.Errorf("mask must have 1 channel, got %d", mask.Channels())
	}

	out := gocv.NewMat()
	gocv.CvtColor(mask, &out, gocv.ColorGrayToBGR)
	return out, nil
}

func (o *OpenCV) BitwiseAnd(a, b gocv.Mat) (gocv.Mat, error) {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() || a.Channels() != b.Channels() {
		return gocv.NewMat(), fmt.Errorf("shape mismatch: %dx%dx%d vs %dx%dx%d",
			a.Rows(), a.Cols(), a.Channels(), b.Rows(), b.Cols(), b.Channels())
	}

	out := gocv.NewMat()
	gocv.BitwiseAnd(a, b, &out)
	return out, nil
}

func (o *OpenCV) Morph(src gocv.Mat, op MorphOp, kernel gocv.Mat, iterations int) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}
	if kernel.Empty() {
		return gocv.NewMat(), fmt.Errorf("kernel is empty")
	}
	if iterations < 1 {
		return gocv.NewMat(), fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}

	output := src.Clone()
	for i := 0; i < iterations; i++ {
		temp := gocv.NewMat()
		switch op {
		case MorphErode:
			gocv.Erode(output, &temp, kernel)
		case MorphDilate:
			gocv.Dilate(output, &temp, kernel)
		case MorphOpen:
			gocv.MorphologyEx(output, &temp, gocv.MorphOpen, kernel)
		case MorphClose:
			gocv.MorphologyEx(output, &temp, gocv.MorphClose, kernel)
		default:
			temp.Close()
			output.Close()
			return gocv.NewMat(), fmt.Errorf("unknown morphological operation: %v", op)
		}
		output.Close()
		output = temp
	}

	return output, nil
}
