package parameter

import "time"

// Voice Lifecycle Timing
const (
	// GlideTime is the frequency ramp used when a voice is retargeted
	GlideTime = 700 * time.Millisecond

	// FadeTime is the gain ramp to silence for surplus voices
	FadeTime = 1500 * time.Millisecond

	// DisposeDelay must exceed FadeTime so nodes reach zero gain before release
	DisposeDelay = 2000 * time.Millisecond
)

// Parameter Smoothing
const (
	BlendSmoothing     = 100 * time.Millisecond
	AmplitudeSmoothing = 100 * time.Millisecond
	DetuneSmoothing    = 300 * time.Millisecond
)

// Global Parameter Defaults
const (
	DefaultAmplitudeDb = -40.0
	DefaultDetuneCents = 0.0
	DefaultDistortion  = 0.0
)

// Voice layout
const (
	// OscillatorsPerVoice is fixed: sine, square, triangle, sawtooth
	OscillatorsPerVoice = 4
)

// Knob mapping, index 1..6 with raw value 0..100
const (
	KnobCount = 6
	KnobMin   = 0
	KnobMax   = 100

	KnobSquare    = 1
	KnobTriangle  = 2
	KnobSaw       = 3
	KnobDrive     = 4
	KnobAmplitude = 5
	KnobDetune    = 6

	// AmplitudeKnobOffsetDb maps knob 0 to -40 dB and knob 100 to +60 dB
	AmplitudeKnobOffsetDb = -40

	// DetuneKnobOffsetCents centres the detune knob at 50
	DetuneKnobOffsetCents = -50

	// DetuneKnobDefault is the resting position of the detune knob
	DetuneKnobDefault = 50
)

// Note grid
const (
	NoteGridMinOctave = 1
	NoteGridMaxOctave = 8
)
