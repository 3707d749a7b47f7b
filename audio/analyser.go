package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/lixenwraith/morph-synth/parameter"
)

// analyserFloorDb is reported for empty spectrum bins
const analyserFloorDb = -120.0

// analyserProc records recent input into a ring buffer
// FFT mode keeps twice the reported bin count so Size() bins cover 0..Nyquist
type analyserProc struct {
	mode     AnalyserMode
	size     int
	ring     []float64
	position int
}

func newAnalyserProc(mode AnalyserMode, size int) *analyserProc {
	capacity := size
	if mode == AnalyserFFT {
		capacity = size * 2
	}
	return &analyserProc{
		mode: mode,
		size: size,
		ring: make([]float64, capacity),
	}
}

func (a *analyserProc) process(_ int64, in, out []float64) {
	for i, v := range in {
		a.ring[a.position%len(a.ring)] = v
		a.position++
		out[i] = v
	}
}

// snapshot returns the ring contents oldest first
func (a *analyserProc) snapshot() []float64 {
	buf := make([]float64, len(a.ring))
	for i := range buf {
		buf[i] = a.ring[(a.position+i)%len(a.ring)]
	}
	return buf
}

// render converts a snapshot for the configured mode
func (a *analyserProc) render(samples []float64) []float64 {
	if a.mode == AnalyserWaveform {
		return samples
	}
	return spectrumDb(samples, a.size)
}

// spectrumDb returns bins magnitude values in dB using a Hann window
func spectrumDb(samples []float64, bins int) []float64 {
	n := len(samples)
	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		windowed[i] = v * w
	}

	spectrum := fft.FFTReal(windowed)

	out := make([]float64, bins)
	for i := range out {
		mag := cmplx.Abs(spectrum[i]) / float64(n)
		if mag <= 0 {
			out[i] = analyserFloorDb
			continue
		}
		db := 20 * math.Log10(mag)
		if db < analyserFloorDb {
			db = analyserFloorDb
		}
		out[i] = db
	}
	return out
}

type beepAnalyser struct {
	*graphNode
	an *analyserProc
}

func (a *beepAnalyser) Mode() AnalyserMode { return a.an.mode }
func (a *beepAnalyser) Size() int          { return a.an.size }

// Values returns the latest capture, waveform samples or spectrum in dB
func (a *beepAnalyser) Values() []float64 {
	a.eng.mu.Lock()
	samples := a.an.snapshot()
	a.eng.mu.Unlock()
	return a.an.render(samples)
}

// validAnalyserSize reports whether size is a supported power of two
func validAnalyserSize(size int) bool {
	if size < parameter.AnalyserMinSize || size > parameter.AnalyserMaxSize {
		return false
	}
	return size&(size-1) == 0
}

// Peak returns the largest absolute sample of a waveform capture
func Peak(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}
