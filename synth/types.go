// Package synth manages polyphonic voices over an audio.Engine
// All methods must be called from a single goroutine, the owner of the clock.Scheduler
package synth

import "github.com/lixenwraith/morph-synth/audio"

// Sentinel errors, shared with the audio layer so errors.Is works across both
var (
	ErrUnknownNote       = audio.ErrUnknownNote
	ErrEngineUnavailable = audio.ErrEngineUnavailable
)

// VoiceState is a voice lifecycle stage
type VoiceState int

const (
	VoiceActive VoiceState = iota
	VoiceFading
	VoiceDisposed
)

func (s VoiceState) String() string {
	switch s {
	case VoiceActive:
		return "active"
	case VoiceFading:
		return "fading"
	case VoiceDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
