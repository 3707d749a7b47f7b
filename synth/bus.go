package synth

import (
	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/parameter"
)

// ApplyBlend stores the waveform mix and ramps every pooled voice toward it
// Fading voices keep fading
func (s *Synth) ApplyBlend(square, triangle, saw float64) {
	s.params = s.params.withBlend(square, triangle, saw)
	gains := s.params.Gains()
	for _, v := range s.pool.voices {
		v.rampGains(gains, parameter.BlendSmoothing)
	}
}

// ApplyDistortion sets the shared drive directly
func (s *Synth) ApplyDistortion(amount float64) {
	s.params.Distortion = clamp01(amount)
	if s.pool.chain != nil {
		s.pool.chain.distortion.SetAmount(s.params.Distortion)
	}
}

// ApplyAmplitude ramps the master gain to the linear equivalent of db
func (s *Synth) ApplyAmplitude(db float64) {
	s.params.AmplitudeDb = db
	if s.pool.chain != nil {
		s.pool.chain.master.Gain().RampTo(audio.DbToGain(db), parameter.AmplitudeSmoothing)
	}
}

// ApplyDetune ramps every oscillator, fading voices included, to cents
func (s *Synth) ApplyDetune(cents float64) {
	s.params.DetuneCents = cents
	for _, v := range s.pool.voices {
		v.rampDetune(cents, parameter.DetuneSmoothing)
	}
	for _, v := range s.pool.fading {
		v.rampDetune(cents, parameter.DetuneSmoothing)
	}
}
