package audio

import "math"

// waveSample returns the unity-gain value of wave at phase in [0, 1)
func waveSample(wave Waveform, phase float64) float64 {
	switch wave {
	case WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveSquare:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveTriangle:
		// Starts at 0 rising, matches sine phase
		if phase < 0.25 {
			return 4 * phase
		}
		if phase < 0.75 {
			return 2 - 4*phase
		}
		return 4*phase - 4
	case WaveSawtooth:
		return 2.0 * (phase - 0.5)
	default:
		return 0
	}
}

// detuneRatio converts cents to a frequency multiplier
func detuneRatio(cents float64) float64 {
	if cents == 0 {
		return 1
	}
	return math.Exp2(cents / 1200)
}

// DbToGain converts decibels to linear amplitude
func DbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
