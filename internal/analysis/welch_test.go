package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelchPSD_EmptyInput(t *testing.T) {
	freqs, psd := welchPSD(nil, 10000, 256)
	assert.Nil(t, freqs)
	assert.Nil(t, psd)
}

func TestWelchPSD_SegmentClippedToSignal(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = math.Sin(float64(i))
	}
	freqs, psd := welchPSD(x, 1000, 256)
	require.NotNil(t, freqs)
	// Clipped to len(x)=100: one-sided bins = 100/2 + 1.
	assert.Len(t, freqs, 51)
	assert.Len(t, psd, 51)
}

func TestWelchPSD_FrequencyGrid(t *testing.T) {
	x := make([]float64, 1024)
	freqs, _ := welchPSD(x, 10000, 256)
	require.Len(t, freqs, 129)
	assert.Zero(t, freqs[0])
	assert.InDelta(t, 10000.0/256.0, freqs[1], 1e-9)
	assert.InDelta(t, 5000.0, freqs[len(freqs)-1], 1e-9) // Nyquist
}

func TestWelchPSD_ParsevalOnSine(t *testing.T) {
	// For a unit sine, integrated density must approximate the signal's
	// variance (1/2), independent of segment length.
	const fs = 1000.0
	x := make([]float64, 8192)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 50 * float64(i) / fs)
	}

	for _, nperseg := range []int{256, 512, 1024} {
		freqs, psd := welchPSD(x, fs, nperseg)
		require.NotEmpty(t, psd)
		df := freqs[1] - freqs[0]
		var total float64
		for _, p := range psd {
			total += p * df
		}
		assert.InDelta(t, 0.5, total, 0.05, "nperseg=%d", nperseg)
	}
}

func TestWelchPSD_MeanRemoval(t *testing.T) {
	// A large DC offset must not leak into non-zero frequencies.
	x := make([]float64, 2048)
	for i := range x {
		x[i] = 100.0
	}
	_, psd := welchPSD(x, 1000, 256)
	require.NotEmpty(t, psd)
	for _, p := range psd {
		assert.Less(t, p, 1e-12)
	}
}
