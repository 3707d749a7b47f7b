package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioBitDepth   = 16
)

// Audio Engine Timing
const (
	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 100 * time.Millisecond

	// AudioBlockSamples is the render block size of the node graph
	AudioBlockSamples = 512

	// AudioDefaultMasterVolume is the output trim applied after the master chain (0.0-1.0)
	AudioDefaultMasterVolume = 1.0
)

// Analyser
const (
	// AnalyserDefaultSize is the scope capture length
	AnalyserDefaultSize = 1024

	// AnalyserMinSize and AnalyserMaxSize bound configured sizes, power of two enforced by caller
	AnalyserMinSize = 32
	AnalyserMaxSize = 16384
)

// Distortion curve
const (
	// DistortionCurveScale maps amount 0..1 onto waveshaper drive k
	DistortionCurveScale = 100.0

	// DistortionSilenceThreshold zeroes tiny inputs to avoid denormal hiss
	DistortionSilenceThreshold = 0.001
)
