package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the Fourier transform of data up
// to the Nyquist frequency, with the mean removed so the DC peak does not
// swamp the physical modes.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the index and magnitude of the strongest
// non-DC spectral component.
func DominantFrequency(ps []float64) (int, float64) {
	maxIdx := 0
	maxVal := 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxVal {
			maxVal = ps[i]
			maxIdx = i
		}
	}
	return maxIdx, maxVal
}
