package audio

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/lixenwraith/morph-synth/parameter"
)

// Config holds audio backend settings
type Config struct {
	Enabled        bool          // False renders silently without opening a device
	MasterVolume   float64       // Output trim after the master chain, 0.0-1.0
	SampleRate     int           // Hz
	BufferDuration time.Duration // Speaker buffer length
	AnalyserMode   AnalyserMode
	AnalyserSize   int
	RecordPath     string // WAV capture of the output, empty disables
}

// DefaultConfig returns the built-in audio settings
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MasterVolume:   parameter.AudioDefaultMasterVolume,
		SampleRate:     parameter.AudioSampleRate,
		BufferDuration: parameter.AudioBufferDuration,
		AnalyserMode:   AnalyserWaveform,
		AnalyserSize:   parameter.AnalyserDefaultSize,
	}
}

// EnvBufferDuration overrides the speaker buffer, parsed by time.ParseDuration
const EnvBufferDuration = "MORPHSYNTH_BUFFER"

// analyserEnv is the JSON shape of MORPHSYNTH_ANALYSER
type analyserEnv struct {
	Mode string `json:"mode"`
	Size int    `json:"size"`
}

// LoadConfig loads audio configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	// Check if audio is enabled
	if enabled := os.Getenv("MORPHSYNTH_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Load master volume (0-100 converted to 0.0-1.0)
	if volume := os.Getenv("MORPHSYNTH_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clampUnit(float64(val) / 100.0)
		}
	}

	// Load sample rate
	if sampleRate := os.Getenv("MORPHSYNTH_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if buffer := os.Getenv(EnvBufferDuration); buffer != "" {
		if val, err := time.ParseDuration(buffer); err == nil && val > 0 {
			cfg.BufferDuration = val
		}
	}

	// Load analyser settings from JSON
	if analyser := os.Getenv("MORPHSYNTH_ANALYSER"); analyser != "" {
		var a analyserEnv
		if err := json.Unmarshal([]byte(analyser), &a); err == nil {
			if mode, err := ParseAnalyserMode(a.Mode); err == nil {
				cfg.AnalyserMode = mode
			}
			if validAnalyserSize(a.Size) {
				cfg.AnalyserSize = a.Size
			}
		}
	}

	return cfg
}
