package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func solid(t *testing.T, b, g, r float64) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), 4, 6, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestOpenCV_InRange(t *testing.T) {
	ops := NewOpenCV()

	tests := []struct {
		name      string
		low, high gocv.Scalar
		wantAll   bool
	}{
		{
			name:    "pixel inside bounds",
			low:     gocv.NewScalar(0, 0, 0, 0),
			high:    gocv.NewScalar(50, 50, 50, 0),
			wantAll: true,
		},
		{
			name:    "pixel equal to bounds",
			low:     gocv.NewScalar(30, 20, 10, 0),
			high:    gocv.NewScalar(30, 20, 10, 0),
			wantAll: true,
		},
		{
			name:    "one channel outside",
			low:     gocv.NewScalar(0, 0, 11, 0),
			high:    gocv.NewScalar(255, 255, 255, 0),
			wantAll: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solid(t, 30, 20, 10)

			mask, err := ops.InRange(src, tt.low, tt.high)
			require.NoError(t, err)
			defer mask.Close()

			assert.Equal(t, 1, mask.Channels())
			selected := gocv.CountNonZero(mask)
			if tt.wantAll {
				assert.Equal(t, src.Rows()*src.Cols(), selected)
			} else {
				assert.Zero(t, selected)
			}
		})
	}
}

func TestOpenCV_InRangeEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := NewOpenCV().InRange(empty, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(255, 255, 255, 0))
	assert.Error(t, err)
}

func TestOpenCV_GrayToBGRAndMask(t *testing.T) {
	ops := NewOpenCV()
	src := solid(t, 200, 100, 50)

	mask, err := ops.InRange(src, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(255, 255, 255, 0))
	require.NoError(t, err)
	defer mask.Close()

	wide, err := ops.GrayToBGR(mask)
	require.NoError(t, err)
	defer wide.Close()
	assert.Equal(t, 3, wide.Channels())

	out, err := ops.BitwiseAnd(wide, src)
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, src.ToBytes(), out.ToBytes())
}

func TestOpenCV_GrayToBGRRejectsColor(t *testing.T) {
	src := solid(t, 1, 2, 3)

	_, err := NewOpenCV().GrayToBGR(src)
	assert.Error(t, err)
}

func TestOpenCV_BitwiseAndShapeMismatch(t *testing.T) {
	a := solid(t, 1, 1, 1)
	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 1, 1, 0), 2, 2, gocv.MatTypeCV8UC3)
	defer b.Close()

	_, err := NewOpenCV().BitwiseAnd(a, b)
	assert.Error(t, err)
}

func TestOpenCV_Morph(t *testing.T) {
	ops := NewOpenCV()
	src := solid(t, 255, 255, 255)
	kernel := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), 3, 3, gocv.MatTypeCV8U)
	defer kernel.Close()

	for _, op := range []MorphOp{MorphErode, MorphDilate, MorphOpen, MorphClose} {
		t.Run(op.String(), func(t *testing.T) {
			out, err := ops.Morph(src, op, kernel, 2)
			require.NoError(t, err)
			defer out.Close()

			// a uniform image is a fixed point of every morphological transform
			assert.Equal(t, src.ToBytes(), out.ToBytes())
		})
	}

	_, err := ops.Morph(src, MorphErode, kernel, 0)
	assert.Error(t, err)
	_, err = ops.Morph(src, MorphOp(42), kernel, 1)
	assert.Error(t, err)
}

// dot returns a black rows x cols image with one white pixel at (r, c)
func dot(t *testing.T, rows, cols, r, c int) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*3)
	for ch := 0; ch < 3; ch++ {
		data[(r*cols+c)*3+ch] = 255
	}
	view, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	defer view.Close()

	m := view.Clone()
	t.Cleanup(func() { m.Close() })
	return m
}

// whitePixels lists the (row, col) of every pixel with a non-zero channel
func whitePixels(m gocv.Mat) [][2]int {
	var out [][2]int
	data := m.ToBytes()
	ch := m.Channels()
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			i := (r*m.Cols() + c) * ch
			for k := 0; k < ch; k++ {
				if data[i+k] != 0 {
					out = append(out, [2]int{r, c})
					break
				}
			}
		}
	}
	return out
}

func TestOpenCV_MorphSinglePixel(t *testing.T) {
	ops := NewOpenCV()
	square := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), 3, 3, gocv.MatTypeCV8U)
	defer square.Close()

	tests := []struct {
		name string
		op   MorphOp
		want [][2]int
	}{
		{"erode removes the pixel", MorphErode, nil},
		{"open removes the pixel", MorphOpen, nil},
		{
			name: "dilate grows to the kernel footprint",
			op:   MorphDilate,
			want: [][2]int{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}},
		},
		{"close keeps the pixel", MorphClose, [][2]int{{2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := dot(t, 5, 5, 2, 2)

			out, err := ops.Morph(src, tt.op, square, 1)
			require.NoError(t, err)
			defer out.Close()

			assert.Equal(t, tt.want, whitePixels(out))
			assert.Equal(t, [][2]int{{2, 2}}, whitePixels(src), "input must not change")
		})
	}
}

func TestOpenCV_MorphIterations(t *testing.T) {
	square := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), 3, 3, gocv.MatTypeCV8U)
	defer square.Close()
	src := dot(t, 7, 7, 3, 3)

	out, err := NewOpenCV().Morph(src, MorphDilate, square, 2)
	require.NoError(t, err)
	defer out.Close()

	// two dilations by 3x3 cover a 5x5 block
	assert.Len(t, whitePixels(out), 25)
}

func TestOpenCV_MorphNonSquareKernel(t *testing.T) {
	// 1 row x 3 columns spreads horizontally only
	row := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), 1, 3, gocv.MatTypeCV8U)
	defer row.Close()
	src := dot(t, 5, 5, 2, 2)

	out, err := NewOpenCV().Morph(src, MorphDilate, row, 1)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, [][2]int{{2, 1}, {2, 2}, {2, 3}}, whitePixels(out))
}
