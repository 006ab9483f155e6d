// Source image ownership for a pipeline
package core

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
}

// ImageData owns the source image and the last rendered frame. Callers only
// ever receive clones, so the source stays unchanged for the pipeline's lifetime.
type ImageData struct {
	mu        sync.RWMutex
	original  gocv.Mat
	processed gocv.Mat
	metadata  ImageMetadata
}

// NewImageData clones mat into a new container
func NewImageData(mat gocv.Mat) (*ImageData, error) {
	if err := ValidateImage(mat); err != nil {
		return nil, err
	}

	return &ImageData{
		original:  mat.Clone(),
		processed: gocv.NewMat(),
		metadata: ImageMetadata{
			Width:    mat.Cols(),
			Height:   mat.Rows(),
			Channels: mat.Channels(),
			Type:     mat.Type(),
		},
	}, nil
}

// GetOriginal returns a copy of the source image
func (img *ImageData) GetOriginal() gocv.Mat {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if img.original.Empty() {
		return gocv.NewMat()
	}
	return img.original.Clone()
}

// SetProcessed records a copy of the latest rendered frame
func (img *ImageData) SetProcessed(mat gocv.Mat) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if mat.Empty() {
		return fmt.Errorf("cannot set empty processed image")
	}

	img.processed.Close()
	img.processed = mat.Clone()
	return nil
}

// GetProcessed returns a copy of the latest rendered frame, empty before the first render
func (img *ImageData) GetProcessed() gocv.Mat {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if img.processed.Empty() {
		return gocv.NewMat()
	}
	return img.processed.Clone()
}

func (img *ImageData) GetMetadata() ImageMetadata {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.metadata
}

// Close releases all resources
func (img *ImageData) Close() {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.original.Close()
	img.processed.Close()
	img.original = gocv.NewMat()
	img.processed = gocv.NewMat()
}

// ValidateImage checks that mat is a non-empty 8-bit 3-channel image
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	if mat.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("unsupported image type %v: need 8-bit, 3 channels", mat.Type())
	}

	// Check for reasonable size limits (prevent memory issues)
	const maxDimension = 16384
	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}
