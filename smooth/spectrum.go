package smooth

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum is the one-sided amplitude spectrum of a real sequence.
type Spectrum struct {
	Frequency []float64
	Amplitude []float64
}

// AmplitudeSpectrum returns 2/n * |FFT(data)| for the first n/2 frequency bins,
// with frequencies in the units of sampleRate.
func AmplitudeSpectrum(data []float64, sampleRate float64) Spectrum {
	n := len(data)
	if n < 2 {
		return Spectrum{}
	}
	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, data)

	half := n / 2
	s := Spectrum{
		Frequency: make([]float64, half),
		Amplitude: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		s.Frequency[i] = fft.Freq(i) * sampleRate
		s.Amplitude[i] = 2.0 / float64(n) * cmplx.Abs(coeff[i])
	}
	return s
}
