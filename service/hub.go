package service

import (
	"fmt"
	"log"
	"slices"
	"sync"
)

// registration pairs a service with the args handed to its Init
type registration struct {
	svc  Service
	args []any
}

// Hub owns service instances and drives their lifecycle in dependency order
// Lifecycle calls run without the hub lock held, so Init and Start may look up other services
type Hub struct {
	mu      sync.RWMutex
	regs    map[string]*registration
	order   []*registration // Dependencies first, resolved on InitAll
	started []*registration // Stopped in reverse by StopAll
}

// NewHub creates an empty service hub
func NewHub() *Hub {
	return &Hub{regs: make(map[string]*registration)}
}

// Register adds svc; args are passed to its Init
func (h *Hub) Register(svc Service, args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.regs[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.regs[name] = &registration{svc: svc, args: args}
	h.order = nil
	return nil
}

// Get returns the service registered as name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	reg, ok := h.regs[name]
	if !ok {
		return nil, false
	}
	return reg.svc, true
}

// MustGet returns the service registered as name as T, panicking when absent or mistyped
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll resolves dependency order and calls Init on every service
// A failure stops the services already initialized, newest first
func (h *Hub) InitAll() error {
	h.mu.Lock()
	if h.order == nil {
		order, err := h.resolve()
		if err != nil {
			h.mu.Unlock()
			return err
		}
		h.order = order
	}
	order := slices.Clone(h.order)
	h.mu.Unlock()

	for i, reg := range order {
		if err := reg.svc.Init(reg.args...); err != nil {
			stopReverse(order[:i])
			return fmt.Errorf("service %s init failed: %w", reg.svc.Name(), err)
		}
	}
	return nil
}

// StartAll calls Start in dependency order
// A failure stops the services already started, newest first
func (h *Hub) StartAll() error {
	h.mu.RLock()
	order := slices.Clone(h.order)
	h.mu.RUnlock()

	if order == nil {
		return fmt.Errorf("services not initialized")
	}

	for i, reg := range order {
		if err := reg.svc.Start(); err != nil {
			stopReverse(order[:i])
			return fmt.Errorf("service %s start failed: %w", reg.svc.Name(), err)
		}
	}

	h.mu.Lock()
	h.started = order
	h.mu.Unlock()
	return nil
}

// StopAll stops started services in reverse dependency order, later calls are no-ops
func (h *Hub) StopAll() {
	h.mu.Lock()
	started := h.started
	h.started = nil
	h.mu.Unlock()

	stopReverse(started)
}

// stopReverse stops regs newest first, logging failures
func stopReverse(regs []*registration) {
	for i := len(regs) - 1; i >= 0; i-- {
		svc := regs[i].svc
		if err := svc.Stop(); err != nil {
			log.Printf("service %s stop: %v", svc.Name(), err)
		}
	}
}

// resolve orders registrations depth first so every dependency precedes its dependents
// Siblings are visited in name order, caller holds the lock
func (h *Hub) resolve() ([]*registration, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(h.regs))
	order := make([]*registration, 0, len(h.regs))

	var visit func(name, from string) error
	visit = func(name, from string) error {
		reg, ok := h.regs[name]
		if !ok {
			return fmt.Errorf("service %s depends on unregistered service: %s", from, name)
		}
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("circular dependency detected at service %s", name)
		}

		state[name] = visiting
		deps := slices.Clone(reg.svc.Dependencies())
		slices.Sort(deps)
		for _, dep := range deps {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, reg)
		return nil
	}

	names := make([]string, 0, len(h.regs))
	for name := range h.regs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}
	return order, nil
}
