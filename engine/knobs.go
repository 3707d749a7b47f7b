package engine

import (
	"fmt"

	"github.com/lixenwraith/morph-synth/parameter"
	"github.com/lixenwraith/morph-synth/synth"
)

// Knobs holds raw control positions, index 0 is knob 1
type Knobs [parameter.KnobCount]float64

// DefaultKnobs returns the power-on positions: everything at 0 except detune centred
func DefaultKnobs() Knobs {
	var k Knobs
	k[parameter.KnobDetune-1] = parameter.DetuneKnobDefault
	return k
}

// Get returns knob index (1-based)
func (k *Knobs) Get(index int) float64 {
	return k[index-1]
}

// Set stores a clamped position and pushes the mapped value into s
//
//	1 square = v/100, 2 triangle = v/100, 3 saw = v/100
//	4 drive = v/100, 5 amplitude = v-40 dB, 6 detune = v-50 cents
func (k *Knobs) Set(s *synth.Synth, index int, value float64) error {
	if index < 1 || index > parameter.KnobCount {
		return fmt.Errorf("knob %d out of range", index)
	}
	if value < parameter.KnobMin {
		value = parameter.KnobMin
	} else if value > parameter.KnobMax {
		value = parameter.KnobMax
	}
	k[index-1] = value

	switch index {
	case parameter.KnobSquare, parameter.KnobTriangle, parameter.KnobSaw:
		s.ApplyBlend(
			k.Get(parameter.KnobSquare)/parameter.KnobMax,
			k.Get(parameter.KnobTriangle)/parameter.KnobMax,
			k.Get(parameter.KnobSaw)/parameter.KnobMax,
		)
	case parameter.KnobDrive:
		s.ApplyDistortion(value / parameter.KnobMax)
	case parameter.KnobAmplitude:
		s.ApplyAmplitude(value + parameter.AmplitudeKnobOffsetDb)
	case parameter.KnobDetune:
		s.ApplyDetune(value + parameter.DetuneKnobOffsetCents)
	}
	return nil
}

// applyAll pushes every position, used to align the synth with the knobs at construction
func (k *Knobs) applyAll(s *synth.Synth) {
	for i := 1; i <= parameter.KnobCount; i++ {
		k.Set(s, i, k.Get(i))
	}
}
