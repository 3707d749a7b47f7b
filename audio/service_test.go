package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestServiceMutedRendersSilently verifies the mute arg keeps the device closed
func TestServiceMutedRendersSilently(t *testing.T) {
	svc := NewService()
	if svc.Name() != "audio" || len(svc.Dependencies()) != 0 {
		t.Fatalf("Unexpected identity %q %v", svc.Name(), svc.Dependencies())
	}
	if err := svc.Init(true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Stop()

	eng := svc.Engine()
	if err := eng.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if !svc.engine.IsSilent() {
		t.Error("Expected muted service to render silently")
	}
	if svc.IsDegraded() {
		t.Error("Muted service should not report degradation")
	}
}

// TestServiceStopClosesEngine verifies Stop releases the engine
func TestServiceStopClosesEngine(t *testing.T) {
	svc := NewService()
	svc.Init(true)
	svc.Start()

	if _, err := svc.Engine().CreateGain(1); err != nil {
		t.Fatalf("CreateGain: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := svc.Engine().CreateGain(1); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Expected ErrEngineClosed after Stop, got %v", err)
	}
}

// TestServiceRecordingArg verifies the record path arg creates a WAV file
func TestServiceRecordingArg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")

	svc := NewService()
	svc.Init(true, path)
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected recording at %s: %v", path, err)
	}
}

// TestServiceStartWithoutInit verifies an uninitialised service reports unavailability
func TestServiceStartWithoutInit(t *testing.T) {
	svc := NewService()
	if err := svc.Start(); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("Expected ErrEngineUnavailable, got %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("Stop without Init should be a no-op, got %v", err)
	}
}
