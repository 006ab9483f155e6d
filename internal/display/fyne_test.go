package display

import (
	"io"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		name   fyne.KeyName
		want   int
		wantOK bool
	}{
		{fyne.KeyEscape, KeyEscape, true},
		{fyne.KeyReturn, 13, true},
		{fyne.KeyTab, 9, true},
		{fyne.KeyA, 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, ok := keyCode(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFyne_WindowSliderAndKeys(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	f := NewFyne(app, quietLogger())
	require.NoError(t, f.CreateWindow("output"))

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer img.Close()
	require.NoError(t, f.Show("output", img))
	assert.ErrorIs(t, f.Show("missing", img), ErrWindowNotFound)

	changed := -1
	require.NoError(t, f.CreateSlider(Slider{Label: "t1factor", Window: "trackbar", Min: 0, Max: 100, Value: 40,
		OnChange: func(v int) { changed = v }}))

	v, err := f.SliderValue("trackbar", "t1factor")
	require.NoError(t, err)
	assert.Equal(t, 40, v)

	fyne.DoAndWait(func() {
		f.sliders[sliderKey{window: "trackbar", label: "t1factor"}].widget.SetValue(75)
	})
	v, err = f.SliderValue("trackbar", "t1factor")
	require.NoError(t, err)
	assert.Equal(t, 75, v)
	assert.Equal(t, 75, changed)

	assert.Equal(t, NoKey, f.PollKey(1))
	f.pushKey(KeyEscape)
	assert.Equal(t, KeyEscape, f.PollKey(10))

	f.DestroyAllWindows()
	_, err = f.SliderValue("trackbar", "t1factor")
	assert.ErrorIs(t, err, ErrSliderNotFound)
}
