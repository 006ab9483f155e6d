package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleOrdering(t *testing.T) {
	for channel := 0; channel <= MaxChannel; channel++ {
		for factor := 0; factor <= MaxFactor; factor++ {
			low, err := ScaleLow(channel, factor)
			require.NoError(t, err)
			high, err := ScaleHigh(channel, factor)
			require.NoError(t, err)

			c := float64(channel)
			if low > c || c > high {
				t.Fatalf("channel=%d factor=%d: want low <= channel <= high, got %v %v", channel, factor, low, high)
			}
		}
	}
}

func TestScaleMonotonic(t *testing.T) {
	for _, channel := range []int{0, 1, 17, 128, 254, 255} {
		prevLow, prevHigh := -1.0, 256.0
		for factor := 0; factor <= MaxFactor; factor++ {
			low, _ := ScaleLow(channel, factor)
			high, _ := ScaleHigh(channel, factor)
			assert.GreaterOrEqual(t, low, prevLow, "ScaleLow(%d, %d)", channel, factor)
			assert.LessOrEqual(t, high, prevHigh, "ScaleHigh(%d, %d)", channel, factor)
			prevLow, prevHigh = low, high
		}
	}
}

func TestScaleEndpoints(t *testing.T) {
	tests := []struct {
		name    string
		scale   func(int, int) (float64, error)
		channel int
		factor  int
		want    float64
	}{
		{"low at zero factor", ScaleLow, 200, 0, 0},
		{"low at full factor", ScaleLow, 200, 100, 200},
		{"low halfway", ScaleLow, 30, 50, 15},
		{"high at zero factor", ScaleHigh, 200, 0, 255},
		{"high at full factor", ScaleHigh, 200, 100, 200},
		{"high halfway", ScaleHigh, 55, 50, 155},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scale(tt.channel, tt.factor)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScaleRejectsOutOfDomain(t *testing.T) {
	tests := []struct {
		name    string
		channel int
		factor  int
	}{
		{"negative channel", -1, 50},
		{"channel above 255", 256, 50},
		{"negative factor", 10, -1},
		{"factor above 100", 10, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScaleLow(tt.channel, tt.factor)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			_, err = ScaleHigh(tt.channel, tt.factor)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestBoundTriplesAreBGR(t *testing.T) {
	c := RGB{R: 10, G: 20, B: 30}

	low, err := LowerBound(c, 50)
	require.NoError(t, err)
	b, _ := ScaleLow(30, 50)
	g, _ := ScaleLow(20, 50)
	r, _ := ScaleLow(10, 50)
	assert.Equal(t, Triple{B: b, G: g, R: r}, low)
	s := low.Scalar()
	assert.Equal(t, []float64{15, 10, 5}, []float64{s.Val1, s.Val2, s.Val3})

	high, err := UpperBound(c, 50)
	require.NoError(t, err)
	b, _ = ScaleHigh(30, 50)
	g, _ = ScaleHigh(20, 50)
	r, _ = ScaleHigh(10, 50)
	assert.Equal(t, Triple{B: b, G: g, R: r}, high)
}

func TestBoundTripleInvalid(t *testing.T) {
	_, err := LowerBound(RGB{R: 300}, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = UpperBound(RGB{}, 120)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
