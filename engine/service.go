package engine

import (
	"fmt"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/clock"
	"github.com/lixenwraith/morph-synth/event"
	"github.com/lixenwraith/morph-synth/service"
	"github.com/lixenwraith/morph-synth/status"
	"github.com/lixenwraith/morph-synth/synth"
)

// Service runs the Controller under the hub
type Service struct {
	hub        *service.Hub
	queue      *event.Queue
	registry   *status.Registry
	controller *Controller
}

// NewService creates the controller service; the audio service must be registered on hub
func NewService(hub *service.Hub, queue *event.Queue, registry *status.Registry) *Service {
	return &Service{hub: hub, queue: queue, registry: registry}
}

// Name implements Service
func (s *Service) Name() string {
	return "engine"
}

// Dependencies implements Service
func (s *Service) Dependencies() []string {
	return []string{"audio"}
}

// Init implements Service
// args[0]: []string - initial note selection
// args[1]: bool - start playing once the loop runs
func (s *Service) Init(args ...any) error {
	svc, ok := s.hub.Get("audio")
	if !ok {
		return fmt.Errorf("engine: audio service not registered")
	}
	audioSvc, ok := svc.(*audio.Service)
	if !ok {
		return fmt.Errorf("engine: unexpected audio service %T", svc)
	}

	ac := audioSvc.Config()
	sched := clock.NewScheduler(clock.NewSystemClock())
	sy := synth.New(audioSvc.Engine(), sched, synth.Config{
		AnalyserMode: ac.AnalyserMode,
		AnalyserSize: ac.AnalyserSize,
	})
	s.controller = NewController(sy, sched, s.queue, s.registry)

	if len(args) > 0 {
		if notes, ok := args[0].([]string); ok {
			for _, n := range notes {
				s.queue.Push(event.NoteToggle(n))
			}
		}
	}
	if len(args) > 1 {
		if autostart, ok := args[1].(bool); ok && autostart {
			s.queue.Push(event.Event{Type: event.EventTransportStart})
		}
	}
	return nil
}

// Start implements Service
func (s *Service) Start() error {
	if s.controller == nil {
		return fmt.Errorf("engine: not initialized")
	}
	s.controller.Start()
	return nil
}

// Stop implements Service
func (s *Service) Stop() error {
	if s.controller != nil {
		s.controller.Stop()
	}
	return nil
}

// Controller returns the running controller
func (s *Service) Controller() *Controller {
	return s.controller
}
