package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Kernel is a structuring element of Rows x Cols ones
type Kernel struct {
	Name string
	Rows int
	Cols int
	Data []uint8
}

// NewKernel creates an all-ones kernel with rows x cols entries
func NewKernel(name string, rows, cols int) (Kernel, error) {
	if rows <= 0 || cols <= 0 {
		return Kernel{}, fmt.Errorf("%w: kernel shape must be positive, got (%d,%d)", ErrInvalidParameter, rows, cols)
	}

	data := make([]uint8, rows*cols)
	for i := range data {
		data[i] = 1
	}
	return Kernel{Name: name, Rows: rows, Cols: cols, Data: data}, nil
}

func (k Kernel) Shape() (int, int) {
	return k.Rows, k.Cols
}

// At returns the entry at row r, column c
func (k Kernel) At(r, c int) uint8 {
	return k.Data[r*k.Cols+c]
}

// Clone returns a copy that shares no storage with k
func (k Kernel) Clone() Kernel {
	data := make([]uint8, len(k.Data))
	copy(data, k.Data)
	k.Data = data
	return k
}

// Mat converts the kernel to a CV_8U Mat with Rows rows and Cols columns.
// The caller must Close it.
func (k Kernel) Mat() (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(k.Rows, k.Cols, gocv.MatTypeCV8U, k.Data)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer view.Close()

	// the view points into k.Data
	return view.Clone(), nil
}
