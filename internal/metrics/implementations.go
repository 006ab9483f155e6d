// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

func checkPair(original, processed gocv.Mat) error {
	if original.Empty() || processed.Empty() {
		return fmt.Errorf("empty images")
	}

	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return fmt.Errorf("image dimensions mismatch")
	}
	return nil
}

// Coverage is the fraction of pixels a render kept (any channel non-zero)
type Coverage struct{}

func NewCoverage() *Coverage {
	return &Coverage{}
}

func (c *Coverage) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	channels := processed.Channels()
	data := processed.ToBytes()
	total := processed.Rows() * processed.Cols()
	if total == 0 || len(data) < total*channels {
		return 0, fmt.Errorf("unexpected pixel buffer size %d", len(data))
	}

	kept := 0
	for i := 0; i < total; i++ {
		px := data[i*channels : (i+1)*channels]
		for _, v := range px {
			if v != 0 {
				kept++
				break
			}
		}
	}

	return float64(kept) / float64(total), nil
}

func (c *Coverage) GetName() string {
	return "Coverage"
}

func (c *Coverage) GetRange() (float64, float64) {
	return 0, 1
}

// MSE implements Mean Squared Error metric on grayscale intensities
type MSE struct{}

func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}
	return meanSquaredError(original, processed), nil
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 65025 // 255^2
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	mse := meanSquaredError(original, processed)
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}

	maxVal := 255.0
	return 20 * math.Log10(maxVal/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100 // Practical range, can go higher
}

func meanSquaredError(original, processed gocv.Mat) float64 {
	gray1 := ensureGrayscale(original)
	defer func() {
		if gray1.Ptr() != original.Ptr() {
			gray1.Close()
		}
	}()

	gray2 := ensureGrayscale(processed)
	defer func() {
		if gray2.Ptr() != processed.Ptr() {
			gray2.Close()
		}
	}()

	sumSquaredDiff := 0.0
	totalPixels := gray1.Rows() * gray1.Cols()

	for y := 0; y < gray1.Rows(); y++ {
		for x := 0; x < gray1.Cols(); x++ {
			diff := float64(gray1.GetUCharAt(y, x)) - float64(gray2.GetUCharAt(y, x))
			sumSquaredDiff += diff * diff
		}
	}

	return sumSquaredDiff / float64(totalPixels)
}

func ensureGrayscale(input gocv.Mat) gocv.Mat {
	if input.Channels() == 1 {
		return input
	}

	gray := gocv.NewMat()
	gocv.CvtColor(input, &gray, gocv.ColorBGRToGray)
	return gray
}
