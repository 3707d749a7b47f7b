package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

// TestRecorderWritesWav verifies captured blocks land in a decodable WAV file
func TestRecorderWritesWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")

	rec, err := NewRecorder(path, 44100)
	if err != nil {
		t.Fatalf("Failed to create recorder: %v", err)
	}

	block := make([]float64, 256)
	for i := range block {
		block[i] = 0.5
	}
	rec.capture(block)
	rec.capture(block)

	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}

	written, dropped := rec.Stats()
	if written+dropped*256 != 512 {
		t.Errorf("Expected 512 frames accounted for, got written=%d dropped=%d", written, dropped)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open capture: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("Expected a valid WAV file")
	}
	if dec.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("Expected mono capture, got %d channels", dec.NumChans)
	}
}

// TestRecorderCreateFails verifies an unwritable path is reported
func TestRecorderCreateFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "capture.wav")
	if _, err := NewRecorder(path, 44100); err == nil {
		t.Error("Expected error for missing directory")
	}
}
