package display

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Mock records display calls and replays scripted key presses. Tests use it,
// as do headless runs that never open a window.
type Mock struct {
	mu sync.Mutex

	open      map[string]bool
	created   []string
	frames    map[string][][]byte
	sliders   map[sliderKey]*Slider
	keys      []int
	polls     int
	destroyed int

	// OnPoll runs before each PollKey returns; poll counts from 1
	OnPoll func(m *Mock, poll int)
	// SliderErr, when set, makes CreateSlider fail
	SliderErr error
}

// NewMock returns a Mock whose PollKey returns keys in order, then NoKey
func NewMock(keys ...int) *Mock {
	return &Mock{
		open:    make(map[string]bool),
		frames:  make(map[string][][]byte),
		sliders: make(map[sliderKey]*Slider),
		keys:    keys,
	}
}

func (m *Mock) CreateWindow(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open[name] {
		m.open[name] = true
		m.created = append(m.created, name)
	}
	return nil
}

func (m *Mock) Show(window string, img gocv.Mat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open[window] {
		return fmt.Errorf("%w: %q", ErrWindowNotFound, window)
	}
	m.frames[window] = append(m.frames[window], img.ToBytes())
	return nil
}

func (m *Mock) PollKey(timeoutMs int) int {
	m.mu.Lock()
	m.polls++
	poll := m.polls
	hook := m.OnPoll
	m.mu.Unlock()

	if hook != nil {
		hook(m, poll)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.keys) == 0 {
		return NoKey
	}
	key := m.keys[0]
	m.keys = m.keys[1:]
	return key
}

func (m *Mock) DestroyAllWindows() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = make(map[string]bool)
	m.sliders = make(map[sliderKey]*Slider)
	m.destroyed++
}

func (m *Mock) CreateSlider(s Slider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SliderErr != nil {
		return m.SliderErr
	}
	if s.Max < s.Min {
		return errors.New("max below min")
	}

	key := sliderKey{window: s.Window, label: s.Label}
	if _, exists := m.sliders[key]; exists {
		return nil
	}
	if !m.open[s.Window] {
		m.open[s.Window] = true
		m.created = append(m.created, s.Window)
	}
	s.Value = clamp(s.Value, s.Min, s.Max)
	m.sliders[key] = &s
	return nil
}

func (m *Mock) SliderValue(window, label string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sliders[sliderKey{window: window, label: label}]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrSliderNotFound, label, window)
	}
	return s.Value, nil
}

// SetSlider moves a slider as a user would, firing its OnChange
func (m *Mock) SetSlider(window, label string, value int) error {
	m.mu.Lock()
	s, ok := m.sliders[sliderKey{window: window, label: label}]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q in %q", ErrSliderNotFound, label, window)
	}
	s.Value = clamp(value, s.Min, s.Max)
	fn, v := s.OnChange, s.Value
	m.mu.Unlock()

	if fn != nil {
		fn(v)
	}
	return nil
}

// Slider returns a copy of the recorded slider
func (m *Mock) Slider(window, label string) (Slider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sliders[sliderKey{window: window, label: label}]
	if !ok {
		return Slider{}, false
	}
	return *s, true
}

func (m *Mock) SliderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sliders)
}

// Frames returns the raw bytes of every image shown in window
func (m *Mock) Frames(window string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.frames[window]))
	copy(out, m.frames[window])
	return out
}

func (m *Mock) OpenWindows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

func (m *Mock) Created() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.created))
	copy(out, m.created)
	return out
}

func (m *Mock) Polls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}

func (m *Mock) Destroyed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}
