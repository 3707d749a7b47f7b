package synth

import "github.com/lixenwraith/morph-synth/parameter"

// Params is the global timbre state read whenever a voice is built or a change is applied
type Params struct {
	SquareMix   float64
	TriangleMix float64
	SawMix      float64
	Distortion  float64 // Drive, 0-1
	AmplitudeDb float64
	DetuneCents float64
}

// DefaultParams returns the power-on state: pure sine at -40 dB
func DefaultParams() Params {
	return Params{
		Distortion:  parameter.DefaultDistortion,
		AmplitudeDb: parameter.DefaultAmplitudeDb,
		DetuneCents: parameter.DefaultDetuneCents,
	}
}

// SineMix returns the implied sine share
func (p Params) SineMix() float64 {
	return 1 - p.SquareMix - p.TriangleMix - p.SawMix
}

// Gains returns the four blend gains in audio.Waveforms order
func (p Params) Gains() [parameter.OscillatorsPerVoice]float64 {
	return [parameter.OscillatorsPerVoice]float64{p.SineMix(), p.SquareMix, p.TriangleMix, p.SawMix}
}

// withBlend stores a clamped mix
// Each share is limited to [0,1]; an oversubscribed mix is scaled to sum to 1, leaving sine silent
func (p Params) withBlend(square, triangle, saw float64) Params {
	square, triangle, saw = clamp01(square), clamp01(triangle), clamp01(saw)
	if sum := square + triangle + saw; sum > 1 {
		square /= sum
		triangle /= sum
		saw = 1 - square - triangle
	}
	p.SquareMix, p.TriangleMix, p.SawMix = square, triangle, saw
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
