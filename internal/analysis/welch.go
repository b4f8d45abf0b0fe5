package analysis

import (
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

// defaultSegmentLength is the Welch FFT segment length used when the caller
// does not supply one.
const defaultSegmentLength = 256

// welchPSD estimates a one-sided power spectral density with Welch's method:
// Hann-windowed segments with 50% overlap, per-segment mean removal, and
// density scaling (power per Hz), matching the conventional definition
//
//	Pxx[k] = 2 * |X_k|^2 / (fs * sum(w^2) * nSegments)
//
// with the factor 2 omitted at DC and, for even segment lengths, at Nyquist.
// A segment length larger than the signal is clipped to the signal length.
func welchPSD(x []float64, fs float64, segmentLength int) (freqs, psd []float64) {
	if len(x) == 0 || fs <= 0 {
		return nil, nil
	}
	if segmentLength <= 0 {
		segmentLength = defaultSegmentLength
	}
	if segmentLength > len(x) {
		segmentLength = len(x)
	}
	step := segmentLength / 2
	if step == 0 {
		step = 1
	}

	// Window normalization: sum of squared Hann coefficients.
	win := make([]float64, segmentLength)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)
	var winSumSq float64
	for _, w := range win {
		winSumSq += w * w
	}

	fft := fourier.NewFFT(segmentLength)
	nFreq := segmentLength/2 + 1
	psd = make([]float64, nFreq)
	seg := make([]float64, segmentLength)
	coeffs := make([]complex128, nFreq)

	segments := 0
	for start := 0; start+segmentLength <= len(x); start += step {
		copy(seg, x[start:start+segmentLength])
		mean := stat.Mean(seg, nil)
		for i := range seg {
			seg[i] = (seg[i] - mean) * win[i]
		}
		coeffs = fft.Coefficients(coeffs, seg)
		for k, c := range coeffs {
			psd[k] += real(c)*real(c) + imag(c)*imag(c)
		}
		segments++
	}
	if segments == 0 {
		return nil, nil
	}

	scale := 1.0 / (fs * winSumSq * float64(segments))
	freqs = make([]float64, nFreq)
	for k := range psd {
		psd[k] *= scale
		if k != 0 && !(segmentLength%2 == 0 && k == nFreq-1) {
			psd[k] *= 2
		}
		freqs[k] = float64(k) * fs / float64(segmentLength)
	}
	return freqs, psd
}
