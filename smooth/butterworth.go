package smooth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
)

// Butterworth is a digital low-pass IIR filter. B and A are the numerator and
// denominator coefficients, A[0] == 1.
type Butterworth struct {
	Order      int
	Cutoff     float64
	SampleRate float64
	// ZeroPhase runs the filter forward and then backward over the sequence.
	ZeroPhase bool

	B []float64
	A []float64
}

// NewButterworth designs an order-th Butterworth low-pass with the cutoff in the
// same units as sampleRate (Hz, or cycles per sample when sampleRate is 1).
func NewButterworth(order int, cutoff, sampleRate float64, zeroPhase bool) (*Butterworth, error) {
	if order < 1 {
		return nil, errors.Wrapf(ErrInvalidParams, "order %d must be at least 1", order)
	}
	if sampleRate <= 0 {
		return nil, errors.Wrapf(ErrInvalidParams, "sample rate %v must be positive", sampleRate)
	}
	nyquist := 0.5 * sampleRate
	wn := cutoff / nyquist
	if wn <= 0 || wn >= 1 {
		return nil, errors.Wrapf(ErrInvalidParams, "cutoff %v must be between 0 and the Nyquist frequency %v", cutoff, nyquist)
	}
	b, a := butterLowpass(order, wn)
	return &Butterworth{
		Order:      order,
		Cutoff:     cutoff,
		SampleRate: sampleRate,
		ZeroPhase:  zeroPhase,
		B:          b,
		A:          a,
	}, nil
}

func (f *Butterworth) Name() string {
	name := fmt.Sprintf("butterworth(order=%d, cutoff=%g, fs=%g)", f.Order, f.Cutoff, f.SampleRate)
	if f.ZeroPhase {
		name += " zero-phase"
	}
	return name
}

func (f *Butterworth) Smooth(data []float64) ([]float64, error) {
	out := LFilter(f.B, f.A, data)
	if !f.ZeroPhase {
		return out, nil
	}
	reverse(out)
	out = LFilter(f.B, f.A, out)
	reverse(out)
	return out, nil
}

// butterLowpass designs the filter for wn, the cutoff as a fraction of Nyquist.
// The analog prototype is prewarped and mapped through the bilinear transform.
func butterLowpass(order int, wn float64) (b, a []float64) {
	const fs = 2.0
	warped := 2 * fs * math.Tan(math.Pi*wn/fs)

	// analog prototype poles on the left half of the unit circle, scaled to the cutoff
	poles := make([]complex128, order)
	for i := range poles {
		m := float64(-order + 1 + 2*i)
		poles[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order))) * complex(warped, 0)
	}
	gain := math.Pow(warped, float64(order))

	// bilinear transform: all zeros move to z = -1
	fs2 := complex(2*fs, 0)
	zpoles := make([]complex128, order)
	zeros := make([]complex128, order)
	denom := complex(1, 0)
	for i, p := range poles {
		zpoles[i] = (fs2 + p) / (fs2 - p)
		zeros[i] = -1
		denom *= fs2 - p
	}
	gain *= real(1 / denom)

	bc := poly(zeros)
	ac := poly(zpoles)
	b = make([]float64, len(bc))
	a = make([]float64, len(ac))
	for i := range bc {
		b[i] = gain * real(bc[i])
		a[i] = real(ac[i])
	}
	return b, a
}

// poly expands prod(x - r) into coefficients, highest power first.
func poly(roots []complex128) []complex128 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		for i, v := range c {
			next[i] += v
			next[i+1] -= v * r
		}
		c = next
	}
	return c
}

// LFilter applies the IIR filter b/a to x with zero initial state,
// using the transposed direct form II structure.
func LFilter(b, a, x []float64) []float64 {
	n := max(len(a), len(b))
	bn := make([]float64, n)
	an := make([]float64, n)
	copy(bn, b)
	copy(an, a)
	if a0 := an[0]; a0 != 1 {
		for i := range bn {
			bn[i] /= a0
			an[i] /= a0
		}
	}

	y := make([]float64, len(x))
	z := make([]float64, n)
	for i, xi := range x {
		yi := bn[0]*xi + z[0]
		for j := 1; j < n; j++ {
			z[j-1] = bn[j]*xi + z[j] - an[j]*yi
		}
		y[i] = yi
	}
	return y
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
