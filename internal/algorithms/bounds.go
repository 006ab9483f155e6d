package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

const (
	MaxChannel = 255
	MaxFactor  = 100
)

// RGB is a caller-facing colour in red, green, blue order
type RGB struct {
	R, G, B int
}

func (c RGB) Validate() error {
	for _, v := range []int{c.R, c.G, c.B} {
		if err := validateChannel(v); err != nil {
			return err
		}
	}
	return nil
}

// Triple is a per-channel bound in blue, green, red order, the order OpenCV expects
type Triple struct {
	B, G, R float64
}

func (t Triple) Scalar() gocv.Scalar {
	return gocv.NewScalar(t.B, t.G, t.R, 0)
}

func validateChannel(channel int) error {
	if channel < 0 || channel > MaxChannel {
		return fmt.Errorf("%w: channel %d outside [0,%d]", ErrInvalidParameter, channel, MaxChannel)
	}
	return nil
}

func validateFactor(factor int) error {
	if factor < 0 || factor > MaxFactor {
		return fmt.Errorf("%w: factor %d outside [0,%d]", ErrInvalidParameter, factor, MaxFactor)
	}
	return nil
}

// ScaleLow scales a lower bound between 0 and channel by factor
func ScaleLow(channel, factor int) (float64, error) {
	if err := validateChannel(channel); err != nil {
		return 0, err
	}
	if err := validateFactor(factor); err != nil {
		return 0, err
	}
	return float64(channel) * float64(factor) / MaxFactor, nil
}

// ScaleHigh scales an upper bound between channel and 255 by factor
func ScaleHigh(channel, factor int) (float64, error) {
	if err := validateChannel(channel); err != nil {
		return 0, err
	}
	if err := validateFactor(factor); err != nil {
		return 0, err
	}
	c := float64(channel)
	return c + (MaxChannel-c)*float64(MaxFactor-factor)/MaxFactor, nil
}

// LowerBound returns the low clamp for c, in (b,g,r) order
func LowerBound(c RGB, factor int) (Triple, error) {
	return boundTriple(c, factor, ScaleLow)
}

// UpperBound returns the high clamp for c, in (b,g,r) order
func UpperBound(c RGB, factor int) (Triple, error) {
	return boundTriple(c, factor, ScaleHigh)
}

func boundTriple(c RGB, factor int, scale func(int, int) (float64, error)) (Triple, error) {
	b, err := scale(c.B, factor)
	if err != nil {
		return Triple{}, err
	}
	g, err := scale(c.G, factor)
	if err != nil {
		return Triple{}, err
	}
	r, err := scale(c.R, factor)
	if err != nil {
		return Triple{}, err
	}
	return Triple{B: b, G: g, R: r}, nil
}
