package synth

import (
	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/clock"
)

// Synth couples the voice pool with the global parameters
// Parameter changes are stored first, so voices built later start from the latest state
type Synth struct {
	eng    audio.Engine
	pool   *Pool
	params Params
}

// New creates a stopped synth with default parameters
func New(eng audio.Engine, sched *clock.Scheduler, cfg Config) *Synth {
	return &Synth{
		eng:    eng,
		pool:   NewPool(eng, sched, cfg),
		params: DefaultParams(),
	}
}

// Params returns the stored global parameters
func (s *Synth) Params() Params { return s.params }

// Pool exposes the voice pool for inspection
func (s *Synth) Pool() *Pool { return s.pool }

// Playing returns true while voices are pooled
func (s *Synth) Playing() bool { return s.pool.Len() > 0 }

// Analyser returns the output tap of the running chain, nil when stopped
func (s *Synth) Analyser() audio.Analyser {
	if s.pool.chain == nil {
		return nil
	}
	return s.pool.chain.Analyser()
}
