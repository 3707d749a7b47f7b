package synth

import (
	"errors"
	"fmt"
	"log"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/clock"
	"github.com/lixenwraith/morph-synth/parameter"
)

// Config selects the optional analyser tap on the master chain
type Config struct {
	AnalyserMode audio.AnalyserMode
	AnalyserSize int // Zero disables the tap
}

// Pool owns the live voices, the fading voices awaiting disposal, and the master chain
type Pool struct {
	eng   audio.Engine
	sched *clock.Scheduler
	cfg   Config

	chain      *MasterChain
	voices     []*Voice // Ordered, one per intended note
	fading     []*Voice // Surplus voices with a pending disposal timer
	nextID     uint64
	generation uint64
}

// NewPool creates an empty pool; disposal timers fire when sched.Run is called
func NewPool(eng audio.Engine, sched *clock.Scheduler, cfg Config) *Pool {
	return &Pool{eng: eng, sched: sched, cfg: cfg}
}

// Start builds the chain and one voice per note
// No-op unless the pool is empty and notes is non-empty
// Any engine failure disposes everything created by this call
func (p *Pool) Start(notes []string, params Params) error {
	if len(notes) == 0 || !p.Empty() {
		log.Printf("synth: start ignored (notes=%d, voices=%d, fading=%d)", len(notes), len(p.voices), len(p.fading))
		return nil
	}

	freqs, err := resolveNotes(notes)
	if err != nil {
		return err
	}

	chain, err := newMasterChain(p.eng, params, p.cfg)
	if err != nil {
		return engineError(err)
	}

	gains := params.Gains()
	voices := make([]*Voice, 0, len(notes))
	for i, note := range notes {
		v, err := newVoice(p.eng, chain, p.nextID+1, note, freqs[i], gains, params.DetuneCents)
		if err != nil {
			for _, created := range voices {
				created.dispose()
			}
			chain.dispose()
			return engineError(err)
		}
		p.nextID++
		voices = append(voices, v)
	}

	p.chain = chain
	p.voices = voices
	p.generation++
	return nil
}

// Stop disposes every pooled and fading voice, then the chain
// Pending disposal timers are cancelled; no-op when already empty
func (p *Pool) Stop() {
	if p.Empty() {
		return
	}
	for _, v := range p.fading {
		v.dispose()
	}
	for _, v := range p.voices {
		v.dispose()
	}
	p.fading = nil
	p.voices = nil

	if p.chain != nil {
		p.chain.dispose()
		p.chain = nil
	}
	p.generation++
}

// Retarget reassigns the pool to targets
// Existing voices glide in place, missing voices are reclaimed from the fading set or cloned from the last voice,
// surplus voices glide to a wrapped target while fading out and are disposed after DisposeDelay
// No-op when the pool or targets is empty
func (p *Pool) Retarget(targets []string, params Params) error {
	if len(targets) == 0 || len(p.voices) == 0 {
		log.Printf("synth: retarget ignored (targets=%d, voices=%d)", len(targets), len(p.voices))
		return nil
	}

	freqs, err := resolveNotes(targets)
	if err != nil {
		return err
	}
	p.generation++

	reused := min(len(p.voices), len(targets))
	for i := 0; i < reused; i++ {
		p.voices[i].glide(targets[i], freqs[i], parameter.GlideTime)
	}

	switch {
	case len(targets) > len(p.voices):
		return p.grow(targets, freqs, params)
	case len(targets) < len(p.voices):
		p.shrink(targets, freqs)
	}
	return nil
}

// grow appends voices for targets beyond the current pool
func (p *Pool) grow(targets []string, freqs []float64, params Params) error {
	last := p.voices[len(p.voices)-1]
	startFreq := last.soundingFrequency()
	startGains := last.currentGains()
	blend := params.Gains()

	for j := len(p.voices); j < len(targets); j++ {
		if v := p.reclaim(); v != nil {
			v.rampGains(blend, parameter.BlendSmoothing)
			v.glide(targets[j], freqs[j], parameter.GlideTime)
			p.voices = append(p.voices, v)
			continue
		}

		v, err := newVoice(p.eng, p.chain, p.nextID+1, targets[j], startFreq, startGains, params.DetuneCents)
		if err != nil {
			return engineError(err)
		}
		p.nextID++
		v.rampGains(blend, parameter.BlendSmoothing)
		v.glide(targets[j], freqs[j], parameter.GlideTime)
		p.voices = append(p.voices, v)
	}
	return nil
}

// shrink moves surplus voices to the fading set with a cancellable disposal
func (p *Pool) shrink(targets []string, freqs []float64) {
	var silent [parameter.OscillatorsPerVoice]float64

	for i := len(targets); i < len(p.voices); i++ {
		v := p.voices[i]
		k := i % len(targets)
		v.glide(targets[k], freqs[k], parameter.GlideTime)
		v.rampGains(silent, parameter.FadeTime)
		v.state = VoiceFading
		v.timer = p.sched.After(parameter.DisposeDelay, func() { p.expire(v) })
		p.fading = append(p.fading, v)
		p.voices[i] = nil
	}
	p.voices = p.voices[:len(targets)]
}

// reclaim takes the most recently faded voice back into service
func (p *Pool) reclaim() *Voice {
	if len(p.fading) == 0 {
		return nil
	}
	last := len(p.fading) - 1
	v := p.fading[last]
	p.fading[last] = nil
	p.fading = p.fading[:last]

	v.timer.Stop()
	v.timer = nil
	v.state = VoiceActive
	return v
}

// expire is the disposal timer callback
func (p *Pool) expire(v *Voice) {
	if v.state != VoiceFading {
		return
	}
	for i, f := range p.fading {
		if f == v {
			p.fading = append(p.fading[:i], p.fading[i+1:]...)
			break
		}
	}
	v.timer = nil
	v.dispose()
}

// Empty returns true when no voices, fading voices or chain exist
func (p *Pool) Empty() bool {
	return len(p.voices) == 0 && len(p.fading) == 0 && p.chain == nil
}

// Len returns the number of pooled voices
func (p *Pool) Len() int { return len(p.voices) }

// FadingCount returns the number of voices awaiting disposal
func (p *Pool) FadingCount() int { return len(p.fading) }

// Generation increments on every pool mutation
func (p *Pool) Generation() uint64 { return p.generation }

// Notes returns the pooled note labels in order
func (p *Pool) Notes() []string {
	notes := make([]string, len(p.voices))
	for i, v := range p.voices {
		notes[i] = v.note
	}
	return notes
}

// Voices returns a copy of the ordered pool
func (p *Pool) Voices() []*Voice {
	out := make([]*Voice, len(p.voices))
	copy(out, p.voices)
	return out
}

// Fading returns a copy of the fading set
func (p *Pool) Fading() []*Voice {
	out := make([]*Voice, len(p.fading))
	copy(out, p.fading)
	return out
}

// Chain returns the master chain, nil while empty
func (p *Pool) Chain() *MasterChain { return p.chain }

// resolveNotes validates every name before anything is created
func resolveNotes(notes []string) ([]float64, error) {
	freqs := make([]float64, len(notes))
	for i, note := range notes {
		f, err := audio.NoteFrequency(note)
		if err != nil {
			return nil, err
		}
		freqs[i] = f
	}
	return freqs, nil
}

// engineError ensures construction failures are reported as engine unavailability
func engineError(err error) error {
	if errors.Is(err, ErrEngineUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
}
