package synth

import (
	"fmt"
	"time"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/clock"
	"github.com/lixenwraith/morph-synth/parameter"
)

// Voice is one sounding pitch: four oscillators sharing frequency and detune, each behind its own blend gain
type Voice struct {
	id    uint64
	note  string
	freq  float64 // Glide target
	oscs  [parameter.OscillatorsPerVoice]audio.Oscillator
	gains [parameter.OscillatorsPerVoice]audio.Gain
	state VoiceState
	timer *clock.Timer // Pending disposal while fading
}

// newVoice builds and starts a voice feeding chain
// On failure every node created here is disposed before returning
func newVoice(eng audio.Engine, chain *MasterChain, id uint64, note string, freq float64,
	gains [parameter.OscillatorsPerVoice]float64, detune float64) (*Voice, error) {

	v := &Voice{id: id, note: note, freq: freq}

	for i, wave := range audio.Waveforms {
		osc, err := eng.CreateOscillator(wave, freq)
		if err != nil {
			v.release()
			return nil, fmt.Errorf("voice %s %s oscillator: %w", note, wave, err)
		}
		v.oscs[i] = osc

		g, err := eng.CreateGain(gains[i])
		if err != nil {
			v.release()
			return nil, fmt.Errorf("voice %s %s gain: %w", note, wave, err)
		}
		v.gains[i] = g

		if err := osc.Connect(g); err != nil {
			v.release()
			return nil, fmt.Errorf("voice %s connect: %w", note, err)
		}
		if err := g.Connect(chain.Input()); err != nil {
			v.release()
			return nil, fmt.Errorf("voice %s connect: %w", note, err)
		}
		osc.Detune().SetValue(detune)
	}

	for _, osc := range v.oscs {
		osc.Start()
	}
	return v, nil
}

// ID returns the allocation sequence number
func (v *Voice) ID() uint64 { return v.id }

// Note returns the current pitch label
func (v *Voice) Note() string { return v.note }

// Frequency returns the glide target in Hz
func (v *Voice) Frequency() float64 { return v.freq }

// State returns the lifecycle stage
func (v *Voice) State() VoiceState { return v.state }

// Oscillators returns the voice's oscillator handles in audio.Waveforms order
func (v *Voice) Oscillators() [parameter.OscillatorsPerVoice]audio.Oscillator { return v.oscs }

// Gains returns the voice's blend gain handles in audio.Waveforms order
func (v *Voice) Gains() [parameter.OscillatorsPerVoice]audio.Gain { return v.gains }

// soundingFrequency reads the pitch currently produced, mid-glide included
func (v *Voice) soundingFrequency() float64 {
	return v.oscs[0].Frequency().Value()
}

// currentGains reads the blend gains at this instant
func (v *Voice) currentGains() [parameter.OscillatorsPerVoice]float64 {
	var out [parameter.OscillatorsPerVoice]float64
	for i, g := range v.gains {
		out[i] = g.Gain().Value()
	}
	return out
}

// glide moves all four oscillators together
func (v *Voice) glide(note string, freq float64, d time.Duration) {
	v.note = note
	v.freq = freq
	for _, osc := range v.oscs {
		osc.Frequency().RampTo(freq, d)
	}
}

func (v *Voice) rampGains(gains [parameter.OscillatorsPerVoice]float64, d time.Duration) {
	for i, g := range v.gains {
		g.Gain().RampTo(gains[i], d)
	}
}

func (v *Voice) rampDetune(cents float64, d time.Duration) {
	for _, osc := range v.oscs {
		osc.Detune().RampTo(cents, d)
	}
}

// dispose stops and releases the voice's nodes, later calls are no-ops
func (v *Voice) dispose() {
	if v.state == VoiceDisposed {
		return
	}
	v.timer.Stop()
	v.timer = nil
	v.release()
	v.state = VoiceDisposed
}

// release disposes whatever nodes exist and forgets them
func (v *Voice) release() {
	for i, osc := range v.oscs {
		if osc == nil {
			continue
		}
		osc.Stop()
		osc.Dispose()
		v.oscs[i] = nil
	}
	for i, g := range v.gains {
		if g == nil {
			continue
		}
		g.Dispose()
		v.gains[i] = nil
	}
}
