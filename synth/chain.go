package synth

import (
	"fmt"

	"github.com/lixenwraith/morph-synth/audio"
)

// MasterChain is the shared path every voice feeds: distortion -> master gain -> sink, with an analyser tap on the master
// Owned by the Pool, created on Start and disposed on Stop
type MasterChain struct {
	distortion audio.Distortion
	master     audio.Gain
	sink       audio.Sink
	analyser   audio.Analyser
}

// newMasterChain builds the chain from the current params, rolling back on failure
func newMasterChain(eng audio.Engine, p Params, cfg Config) (*MasterChain, error) {
	c := &MasterChain{}
	var err error

	if c.distortion, err = eng.CreateDistortion(clamp01(p.Distortion)); err != nil {
		return nil, c.fail("distortion", err)
	}
	if c.master, err = eng.CreateGain(audio.DbToGain(p.AmplitudeDb)); err != nil {
		return nil, c.fail("master gain", err)
	}
	if c.sink, err = eng.CreateMasterSink(); err != nil {
		return nil, c.fail("sink", err)
	}
	if cfg.AnalyserSize > 0 {
		if c.analyser, err = eng.CreateAnalyser(cfg.AnalyserMode, cfg.AnalyserSize); err != nil {
			return nil, c.fail("analyser", err)
		}
	}

	if err = c.distortion.Connect(c.master); err != nil {
		return nil, c.fail("connect", err)
	}
	if err = c.master.Connect(c.sink); err != nil {
		return nil, c.fail("connect", err)
	}
	if c.analyser != nil {
		if err = c.master.Connect(c.analyser); err != nil {
			return nil, c.fail("connect", err)
		}
	}
	return c, nil
}

func (c *MasterChain) fail(stage string, err error) error {
	c.dispose()
	return fmt.Errorf("master chain %s: %w", stage, err)
}

// Input is the node voices connect to
func (c *MasterChain) Input() audio.Node { return c.distortion }

// Distortion returns the shared waveshaper
func (c *MasterChain) Distortion() audio.Distortion { return c.distortion }

// Master returns the shared output gain
func (c *MasterChain) Master() audio.Gain { return c.master }

// Analyser returns the output tap, nil when disabled
func (c *MasterChain) Analyser() audio.Analyser { return c.analyser }

// dispose releases every chain node once
func (c *MasterChain) dispose() {
	if c.analyser != nil {
		c.analyser.Dispose()
		c.analyser = nil
	}
	if c.sink != nil {
		c.sink.Dispose()
		c.sink = nil
	}
	if c.master != nil {
		c.master.Dispose()
		c.master = nil
	}
	if c.distortion != nil {
		c.distortion.Dispose()
		c.distortion = nil
	}
}
