package audio

import (
	"errors"
	"log"
	"sync/atomic"
)

// Service wraps BeepEngine as a Service
// Handles graceful degradation when no audio device is available
type Service struct {
	engine   *BeepEngine
	config   *Config
	degraded atomic.Bool
}

// NewService creates a new audio service
func NewService() *Service {
	return &Service{}
}

// Name implements Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: bool - mute state (true = render silently without opening a device)
// args[1]: string - optional WAV recording path
func (s *Service) Init(args ...any) error {
	config := LoadConfig()

	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok && muted {
			config.Enabled = false
		}
	}
	if len(args) > 1 {
		if path, ok := args[1].(string); ok && path != "" {
			config.RecordPath = path
		}
	}

	s.config = config
	s.engine = NewBeepEngine(config)
	return nil
}

// Start implements Service
// The device itself opens on the first transport Start; recording begins immediately
func (s *Service) Start() error {
	if s.engine == nil {
		return ErrEngineUnavailable
	}
	if s.config.RecordPath != "" {
		if err := s.engine.StartRecording(s.config.RecordPath); err != nil {
			log.Printf("audio: recording disabled: %v", err)
		}
	}
	return nil
}

// Stop implements Service
func (s *Service) Stop() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// Engine returns the engine handed to the synth
func (s *Service) Engine() Engine {
	return &degradingEngine{BeepEngine: s.engine, svc: s}
}

// Config returns the settings loaded by Init
func (s *Service) Config() Config {
	if s.config == nil {
		return *DefaultConfig()
	}
	return *s.config
}

// IsDegraded returns true once the device failed and output fell back to silent rendering
func (s *Service) IsDegraded() bool {
	return s.degraded.Load()
}

// degradingEngine retries a failed device as silent output so the control surface keeps working
type degradingEngine struct {
	*BeepEngine
	svc *Service
}

// Resume opens the device, falling back to silent mode once it proves unavailable
func (d *degradingEngine) Resume() error {
	err := d.BeepEngine.Resume()
	if err == nil || !errors.Is(err, ErrEngineUnavailable) || d.svc.degraded.Load() {
		return err
	}

	log.Printf("audio: %v, continuing without device", err)
	d.svc.degraded.Store(true)
	d.config.Enabled = false
	if retry := d.BeepEngine.Resume(); retry != nil {
		return retry
	}
	return err
}
