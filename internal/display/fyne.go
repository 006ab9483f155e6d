package display

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

type fyneSlider struct {
	widget   *widget.Slider
	value    int
	onChange func(int)
}

type fyneWindow struct {
	win      fyne.Window
	image    *canvas.Image
	controls *fyne.Container
}

// Fyne shows frames and sliders in Fyne windows. The Fyne app must run on the
// main goroutine; the render loop calls into Fyne from another goroutine and
// every UI mutation is marshalled with fyne.Do or fyne.DoAndWait.
type Fyne struct {
	app    fyne.App
	logger logrus.FieldLogger

	mu      sync.Mutex
	windows map[string]*fyneWindow
	order   []string
	sliders map[sliderKey]*fyneSlider
	keys    chan int
}

func NewFyne(app fyne.App, logger logrus.FieldLogger) *Fyne {
	return &Fyne{
		app:     app,
		logger:  logger,
		windows: make(map[string]*fyneWindow),
		order:   make([]string, 0),
		sliders: make(map[sliderKey]*fyneSlider),
		keys:    make(chan int, 16),
	}
}

func (f *Fyne) CreateWindow(name string) error {
	f.window(name)
	return nil
}

func (f *Fyne) window(name string) *fyneWindow {
	f.mu.Lock()
	if fw, ok := f.windows[name]; ok {
		f.mu.Unlock()
		return fw
	}
	f.mu.Unlock()

	var fw *fyneWindow
	fyne.DoAndWait(func() {
		fw = f.newWindow(name)
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.windows[name]; ok {
		fyne.Do(fw.win.Close)
		return existing
	}
	f.windows[name] = fw
	f.order = append(f.order, name)
	f.logger.WithField("window", name).Debug("Fyne window created")
	return fw
}

// newWindow builds the window widgets. It runs on the Fyne goroutine.
func (f *Fyne) newWindow(name string) *fyneWindow {
	w := f.app.NewWindow(name)

	placeholder := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			placeholder.Set(x, y, color.RGBA{240, 240, 240, 255})
		}
	}

	img := canvas.NewImageFromImage(placeholder)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScalePixels
	img.SetMinSize(fyne.NewSize(320, 240))

	controls := container.NewVBox()
	w.SetContent(container.NewBorder(nil, controls, nil, nil, img))

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if code, ok := keyCode(ev.Name); ok {
			f.pushKey(code)
		}
	})
	w.Canvas().SetOnTypedRune(func(r rune) {
		f.pushKey(int(r))
	})
	// closing a window by hand behaves like the cancel key
	w.SetCloseIntercept(func() {
		f.pushKey(KeyEscape)
	})

	w.Show()
	return &fyneWindow{win: w, image: img, controls: controls}
}

// keyCode maps non-printable keys to their ASCII codes; printable keys arrive as runes
func keyCode(name fyne.KeyName) (int, bool) {
	switch name {
	case fyne.KeyEscape:
		return KeyEscape, true
	case fyne.KeyReturn, fyne.KeyEnter:
		return 13, true
	case fyne.KeyBackspace:
		return 8, true
	case fyne.KeyTab:
		return 9, true
	case fyne.KeyDelete:
		return 127, true
	}
	return 0, false
}

func (f *Fyne) pushKey(code int) {
	select {
	case f.keys <- code:
	default:
		f.logger.WithField("key", code).Debug("Key buffer full, dropping key")
	}
}

func (f *Fyne) Show(window string, img gocv.Mat) error {
	f.mu.Lock()
	fw, ok := f.windows[window]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrWindowNotFound, window)
	}

	frame, err := img.ToImage()
	if err != nil {
		return fmt.Errorf("convert frame for %q: %w", window, err)
	}

	fyne.Do(func() {
		fw.image.Image = frame
		fw.image.Refresh()
	})
	return nil
}

func (f *Fyne) PollKey(timeoutMs int) int {
	if timeoutMs <= 0 {
		return <-f.keys
	}

	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case key := <-f.keys:
		return key
	case <-timer.C:
		return NoKey
	}
}

func (f *Fyne) DestroyAllWindows() {
	f.mu.Lock()
	windows := make([]*fyneWindow, 0, len(f.order))
	for _, name := range f.order {
		windows = append(windows, f.windows[name])
	}
	f.windows = make(map[string]*fyneWindow)
	f.order = f.order[:0]
	f.sliders = make(map[sliderKey]*fyneSlider)
	f.mu.Unlock()

	fyne.DoAndWait(func() {
		for _, fw := range windows {
			fw.win.Close()
		}
	})
	f.logger.WithField("count", len(windows)).Debug("Fyne windows destroyed")
}

func (f *Fyne) CreateSlider(s Slider) error {
	if s.Max < s.Min {
		return fmt.Errorf("slider %q: max %d below min %d", s.Label, s.Max, s.Min)
	}

	key := sliderKey{window: s.Window, label: s.Label}
	f.mu.Lock()
	_, exists := f.sliders[key]
	f.mu.Unlock()
	if exists {
		return nil
	}

	fw := f.window(s.Window)
	fs := &fyneSlider{value: clamp(s.Value, s.Min, s.Max), onChange: s.OnChange}

	fyne.DoAndWait(func() {
		valueLabel := widget.NewLabel(fmt.Sprintf("%d", fs.value))
		slider := widget.NewSlider(float64(s.Min), float64(s.Max))
		slider.Step = 1
		slider.SetValue(float64(fs.value))
		slider.OnChanged = func(value float64) {
			v := int(value)
			valueLabel.SetText(fmt.Sprintf("%d", v))

			f.mu.Lock()
			fs.value = v
			f.mu.Unlock()

			if fs.onChange != nil {
				fs.onChange(v)
			}
		}
		fs.widget = slider

		fw.controls.Add(container.NewBorder(nil, nil, widget.NewLabel(s.Label), valueLabel, slider))
		fw.controls.Refresh()
	})

	f.mu.Lock()
	f.sliders[key] = fs
	f.mu.Unlock()
	return nil
}

func (f *Fyne) SliderValue(window, label string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fs, ok := f.sliders[sliderKey{window: window, label: label}]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrSliderNotFound, label, window)
	}
	return fs.value, nil
}
