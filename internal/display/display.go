// Package display abstracts the windows, key polling and sliders the renderer drives.
package display

import (
	"errors"

	"gocv.io/x/gocv"
)

const (
	// KeyEscape is the default key that ends a render loop
	KeyEscape = 27
	// NoKey is returned by PollKey when the timeout expires
	NoKey = -1
)

var (
	ErrWindowNotFound = errors.New("window not found")
	ErrSliderNotFound = errors.New("slider not found")
)

// Slider describes an integer control attached to a window
type Slider struct {
	Label    string
	Window   string
	Min      int
	Max      int
	Value    int
	OnChange func(value int)
}

// Display is the windowing capability the renderer needs. Creating a window or
// slider that already exists is a no-op.
type Display interface {
	CreateWindow(name string) error
	Show(window string, img gocv.Mat) error
	// PollKey waits up to timeoutMs for a key press and returns its code or NoKey.
	PollKey(timeoutMs int) int
	DestroyAllWindows()
	CreateSlider(s Slider) error
	SliderValue(window, label string) (int, error)
}

type sliderKey struct {
	window string
	label  string
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
