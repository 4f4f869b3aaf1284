package smooth

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// MovingAverage is a trailing mean over the last Window samples. Near the start,
// where fewer than Window samples exist, it averages all samples seen so far.
type MovingAverage struct {
	Window int
}

func (m MovingAverage) Name() string {
	return fmt.Sprintf("moving_average(%d)", m.Window)
}

func (m MovingAverage) validate() error {
	if m.Window < 1 {
		return errors.Wrapf(ErrInvalidParams, "window %d must be at least 1", m.Window)
	}
	return nil
}

func (m MovingAverage) Smooth(data []float64) ([]float64, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	out := make([]float64, len(data))
	for i := range data {
		start := max(0, i-m.Window+1)
		window := data[start : i+1]
		out[i] = floats.Sum(window) / float64(len(window))
	}
	return out, nil
}
