package audio

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/morph-synth/parameter"
)

// distortionCurve is the waveshaper transfer function for drive amount 0..1
func distortionCurve(x, amount float64) float64 {
	if math.Abs(x) < parameter.DistortionSilenceThreshold {
		return 0
	}
	k := amount * parameter.DistortionCurveScale
	deg := math.Pi / 180
	return (3 + k) * x * 20 * deg / (math.Pi + k*math.Abs(x))
}

// Helper to create a volume effect safely
// math.Log2(0) is -Inf, so we handle 0 volume by making it silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// clampUnit bounds v to [0, 1]
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
