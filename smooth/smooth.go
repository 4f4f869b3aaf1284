// Package smooth filters a speed sequence. Every Smoother returns a new slice
// of the same length as its input and leaves the input untouched.
package smooth

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidParams = errors.New("invalid smoothing parameters")

// Smoother turns a raw sequence into a smoothed one of equal length.
type Smoother interface {
	Smooth(data []float64) ([]float64, error)
	Name() string
}

// Method names accepted by New.
const (
	MethodNone          = "none"
	MethodMovingAverage = "moving_average"
	MethodButterworth   = "butterworth"
)

// Params is the static smoothing configuration.
type Params struct {
	Method     string
	Window     int
	Order      int
	Cutoff     float64
	SampleRate float64
	ZeroPhase  bool
}

// New builds the Smoother selected by p.Method.
func New(p Params) (Smoother, error) {
	switch strings.ToLower(strings.TrimSpace(p.Method)) {
	case MethodNone, "":
		return None{}, nil
	case MethodMovingAverage, "moving-average", "ma":
		ma := MovingAverage{Window: p.Window}
		if err := ma.validate(); err != nil {
			return nil, err
		}
		return ma, nil
	case MethodButterworth, "butter":
		bw, err := NewButterworth(p.Order, p.Cutoff, p.SampleRate, p.ZeroPhase)
		if err != nil {
			return nil, err
		}
		return bw, nil
	}
	return nil, errors.Wrapf(ErrInvalidParams, "unknown method %q", p.Method)
}

// None passes the data through unchanged.
type None struct{}

func (None) Name() string { return MethodNone }

func (None) Smooth(data []float64) ([]float64, error) {
	out := make([]float64, len(data))
	copy(out, data)
	return out, nil
}
