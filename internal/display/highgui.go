package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

type trackbar struct {
	bar      *gocv.Trackbar
	last     int
	onChange func(int)
}

// HighGUI drives OpenCV's native windows and trackbars. OpenCV's UI is not
// thread safe, so every call must come from the same goroutine.
type HighGUI struct {
	mu       sync.Mutex
	logger   logrus.FieldLogger
	windows  map[string]*gocv.Window
	order    []string
	trackers map[sliderKey]*trackbar
}

func NewHighGUI(logger logrus.FieldLogger) *HighGUI {
	return &HighGUI{
		logger:   logger,
		windows:  make(map[string]*gocv.Window),
		order:    make([]string, 0),
		trackers: make(map[sliderKey]*trackbar),
	}
}

func (h *HighGUI) CreateWindow(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.window(name)
	return nil
}

// window returns the named window, creating it on first use. Callers hold mu.
func (h *HighGUI) window(name string) *gocv.Window {
	if w, ok := h.windows[name]; ok {
		return w
	}

	w := gocv.NewWindow(name)
	h.windows[name] = w
	h.order = append(h.order, name)
	h.logger.WithField("window", name).Debug("Window created")
	return w
}

func (h *HighGUI) Show(window string, img gocv.Mat) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[window]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWindowNotFound, window)
	}
	if img.Empty() {
		return fmt.Errorf("cannot show empty image in %q", window)
	}

	w.IMShow(img)
	return nil
}

func (h *HighGUI) PollKey(timeoutMs int) int {
	h.mu.Lock()
	var w *gocv.Window
	if len(h.order) > 0 {
		w = h.windows[h.order[0]]
	}
	h.mu.Unlock()

	key := NoKey
	if w != nil {
		key = w.WaitKey(timeoutMs)
	} else {
		time.Sleep(time.Duration(timeoutMs) * time.Millisecond)
	}

	h.notifyChanges()

	if key < 0 {
		return NoKey
	}
	return key & 0xFF
}

// notifyChanges fires OnChange for every trackbar moved since the last poll
func (h *HighGUI) notifyChanges() {
	type change struct {
		fn    func(int)
		value int
	}

	h.mu.Lock()
	changes := make([]change, 0)
	for _, t := range h.trackers {
		pos := t.bar.GetPos()
		if pos != t.last {
			t.last = pos
			if t.onChange != nil {
				changes = append(changes, change{fn: t.onChange, value: pos})
			}
		}
	}
	h.mu.Unlock()

	for _, c := range changes {
		c.fn(c.value)
	}
}

func (h *HighGUI) DestroyAllWindows() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range h.order {
		if err := h.windows[name].Close(); err != nil {
			h.logger.WithError(err).WithField("window", name).Warn("Failed to close window")
		}
	}

	h.windows = make(map[string]*gocv.Window)
	h.order = h.order[:0]
	h.trackers = make(map[sliderKey]*trackbar)
	h.logger.Debug("All windows destroyed")
}

func (h *HighGUI) CreateSlider(s Slider) error {
	if s.Max < s.Min {
		return fmt.Errorf("slider %q: max %d below min %d", s.Label, s.Max, s.Min)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	key := sliderKey{window: s.Window, label: s.Label}
	if _, exists := h.trackers[key]; exists {
		return nil
	}

	w := h.window(s.Window)
	bar := w.CreateTrackbar(s.Label, s.Max)
	bar.SetMin(s.Min)
	value := clamp(s.Value, s.Min, s.Max)
	bar.SetPos(value)

	h.trackers[key] = &trackbar{bar: bar, last: value, onChange: s.OnChange}
	h.logger.WithFields(logrus.Fields{
		"window": s.Window,
		"slider": s.Label,
		"min":    s.Min,
		"max":    s.Max,
	}).Debug("Slider created")
	return nil
}

func (h *HighGUI) SliderValue(window, label string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.trackers[sliderKey{window: window, label: label}]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrSliderNotFound, label, window)
	}
	return t.bar.GetPos(), nil
}
