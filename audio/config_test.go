package audio

import (
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("Expected default config to have Enabled=true")
	}
	if cfg.MasterVolume != 1.0 {
		t.Errorf("Expected default master volume 1.0, got %f", cfg.MasterVolume)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("Expected default sample rate 44100, got %d", cfg.SampleRate)
	}
	if cfg.AnalyserMode != AnalyserWaveform || cfg.AnalyserSize != 1024 {
		t.Errorf("Expected waveform/1024 analyser, got %s/%d", cfg.AnalyserMode, cfg.AnalyserSize)
	}
}

// TestLoadConfigFromEnv verifies every supported variable
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MORPHSYNTH_AUDIO_ENABLED", "false")
	t.Setenv("MORPHSYNTH_MASTER_VOLUME", "150")
	t.Setenv("MORPHSYNTH_SAMPLE_RATE", "48000")
	t.Setenv(EnvBufferDuration, "40ms")
	t.Setenv("MORPHSYNTH_ANALYSER", `{"mode":"fft","size":512}`)

	cfg := LoadConfig()

	if cfg.Enabled {
		t.Error("Expected Enabled=false")
	}
	if cfg.MasterVolume != 1.0 {
		t.Errorf("Expected volume clamped to 1.0, got %f", cfg.MasterVolume)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("Expected SampleRate=48000, got %d", cfg.SampleRate)
	}
	if cfg.BufferDuration != 40*time.Millisecond {
		t.Errorf("Expected 40ms buffer, got %v", cfg.BufferDuration)
	}
	if cfg.AnalyserMode != AnalyserFFT {
		t.Errorf("Expected fft analyser, got %s", cfg.AnalyserMode)
	}
	if cfg.AnalyserSize != 512 {
		t.Errorf("Expected analyser size 512, got %d", cfg.AnalyserSize)
	}
}

// TestLoadConfigIgnoresInvalid verifies malformed values fall back to defaults
func TestLoadConfigIgnoresInvalid(t *testing.T) {
	t.Setenv("MORPHSYNTH_AUDIO_ENABLED", "maybe")
	t.Setenv("MORPHSYNTH_MASTER_VOLUME", "loud")
	t.Setenv("MORPHSYNTH_SAMPLE_RATE", "-1")
	t.Setenv(EnvBufferDuration, "soon")
	t.Setenv("MORPHSYNTH_ANALYSER", `{"mode":"bars","size":1000}`)

	cfg := LoadConfig()
	def := DefaultConfig()

	if cfg.Enabled != def.Enabled {
		t.Errorf("Expected Enabled=%v, got %v", def.Enabled, cfg.Enabled)
	}
	if cfg.MasterVolume != def.MasterVolume {
		t.Errorf("Expected MasterVolume=%f, got %f", def.MasterVolume, cfg.MasterVolume)
	}
	if cfg.SampleRate != def.SampleRate {
		t.Errorf("Expected SampleRate=%d, got %d", def.SampleRate, cfg.SampleRate)
	}
	if cfg.BufferDuration != def.BufferDuration {
		t.Errorf("Expected BufferDuration=%v, got %v", def.BufferDuration, cfg.BufferDuration)
	}
	if cfg.AnalyserMode != def.AnalyserMode || cfg.AnalyserSize != def.AnalyserSize {
		t.Errorf("Expected default analyser, got %s/%d", cfg.AnalyserMode, cfg.AnalyserSize)
	}
}
