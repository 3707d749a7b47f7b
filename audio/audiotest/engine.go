// Package audiotest provides a recording audio.Engine for deterministic tests
package audiotest

import (
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/clock"
)

// Kind identifies the primitive behind a recorded handle
type Kind int

const (
	KindOscillator Kind = iota
	KindGain
	KindDistortion
	KindSink
	KindAnalyser
)

// Engine records every handle it creates
// Engine time is the mock clock's elapsed time since construction
type Engine struct {
	mu    sync.Mutex
	clock *clock.MockClock
	epoch time.Time

	handles   []*handle
	resumes   int
	resumeErr error
	failAfter int // Remaining successful creations, -1 disables injection
	closed    bool
}

// New creates an engine driven by c
func New(c *clock.MockClock) *Engine {
	return &Engine{
		clock:     c,
		epoch:     c.Now(),
		failAfter: -1,
	}
}

// SetResumeError makes subsequent Resume calls fail with err, nil clears it
func (e *Engine) SetResumeError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resumeErr = err
}

// FailAfter lets n more creations succeed, then every creation fails
// Negative n disables injection
func (e *Engine) FailAfter(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failAfter = n
}

// Resume implements audio.Engine
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resumeErr != nil {
		return e.resumeErr
	}
	e.resumes++
	return nil
}

// Now implements audio.Engine
func (e *Engine) Now() time.Duration {
	return e.clock.Now().Sub(e.epoch)
}

// Close implements audio.Engine
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *Engine) create(kind Kind) (*handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, audio.ErrEngineClosed
	}
	if e.failAfter == 0 {
		return nil, fmt.Errorf("%w: injected failure", audio.ErrEngineUnavailable)
	}
	if e.failAfter > 0 {
		e.failAfter--
	}

	h := &handle{eng: e, id: len(e.handles) + 1, kind: kind}
	e.handles = append(e.handles, h)
	return h, nil
}

// CreateOscillator implements audio.Engine
func (e *Engine) CreateOscillator(wave audio.Waveform, freq float64) (audio.Oscillator, error) {
	h, err := e.create(KindOscillator)
	if err != nil {
		return nil, err
	}
	return &Oscillator{
		handle: h,
		wave:   wave,
		freq:   &Param{eng: e, ramp: audio.Hold(freq)},
		detune: &Param{eng: e, ramp: audio.Hold(0)},
	}, nil
}

// CreateGain implements audio.Engine
func (e *Engine) CreateGain(initial float64) (audio.Gain, error) {
	h, err := e.create(KindGain)
	if err != nil {
		return nil, err
	}
	return &Gain{handle: h, gain: &Param{eng: e, ramp: audio.Hold(initial)}}, nil
}

// CreateDistortion implements audio.Engine
func (e *Engine) CreateDistortion(amount float64) (audio.Distortion, error) {
	h, err := e.create(KindDistortion)
	if err != nil {
		return nil, err
	}
	return &Distortion{handle: h, amount: amount}, nil
}

// CreateMasterSink implements audio.Engine
func (e *Engine) CreateMasterSink() (audio.Sink, error) {
	h, err := e.create(KindSink)
	if err != nil {
		return nil, err
	}
	return &Sink{handle: h}, nil
}

// CreateAnalyser implements audio.Engine
func (e *Engine) CreateAnalyser(mode audio.AnalyserMode, size int) (audio.Analyser, error) {
	h, err := e.create(KindAnalyser)
	if err != nil {
		return nil, err
	}
	return &Analyser{handle: h, mode: mode, values: make([]float64, size)}, nil
}

// --- Counters ---

// Resumes returns the number of successful Resume calls
func (e *Engine) Resumes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resumes
}

// Created returns the number of handles of kind ever created
func (e *Engine) Created(kind Kind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, h := range e.handles {
		if h.kind == kind {
			n++
		}
	}
	return n
}

// Live returns the number of undisposed handles of kind
func (e *Engine) Live(kind Kind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, h := range e.handles {
		if h.kind == kind && h.disposals == 0 {
			n++
		}
	}
	return n
}

// LiveNodes returns the number of undisposed handles of any kind
func (e *Engine) LiveNodes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, h := range e.handles {
		if h.disposals == 0 {
			n++
		}
	}
	return n
}

// DoubleDisposals returns the number of handles disposed more than once
func (e *Engine) DoubleDisposals() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, h := range e.handles {
		if h.disposals > 1 {
			n++
		}
	}
	return n
}

// --- Handles ---

// handle is the shared record behind every node type
type handle struct {
	eng       *Engine
	id        int
	kind      Kind
	disposals int
	dests     []int
}

// ID returns the creation sequence number
func (h *handle) ID() int { return h.id }

// Disposed returns true once Dispose has been called
func (h *handle) Disposed() bool {
	h.eng.mu.Lock()
	defer h.eng.mu.Unlock()
	return h.disposals > 0
}

// Connected returns true if this node feeds dst
func (h *handle) Connected(dst audio.Node) bool {
	target, ok := dst.(interface{ ID() int })
	if !ok {
		return false
	}
	h.eng.mu.Lock()
	defer h.eng.mu.Unlock()
	for _, id := range h.dests {
		if id == target.ID() {
			return true
		}
	}
	return false
}

// Connect implements audio.Node
func (h *handle) Connect(dst audio.Node) error {
	target, ok := dst.(interface{ record() *handle })
	if !ok || target.record().eng != h.eng {
		return audio.ErrForeignNode
	}
	t := target.record()

	h.eng.mu.Lock()
	defer h.eng.mu.Unlock()
	if h.disposals > 0 || t.disposals > 0 {
		return audio.ErrNodeDisposed
	}
	if h.kind == KindSink {
		return audio.ErrSinkOutput
	}
	h.dests = append(h.dests, t.id)
	return nil
}

// Dispose implements audio.Node, repeated calls are counted as defects
func (h *handle) Dispose() {
	h.eng.mu.Lock()
	defer h.eng.mu.Unlock()
	h.disposals++
}

func (h *handle) record() *handle { return h }

// Param records ramps against the engine clock
type Param struct {
	eng   *Engine
	ramp  audio.Ramp
	ramps int
}

// Value implements audio.Param
func (p *Param) Value() float64 {
	now := p.eng.Now()
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	return p.ramp.At(now)
}

// SetValue implements audio.Param
func (p *Param) SetValue(v float64) {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	p.ramp = audio.Hold(v)
}

// RampTo implements audio.Param
func (p *Param) RampTo(v float64, d time.Duration) {
	now := p.eng.Now()
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	p.ramp = p.ramp.Retarget(now, v, d)
	p.ramps++
}

// Target returns the value the current ramp ends at
func (p *Param) Target() float64 {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	return p.ramp.To
}

// Ramp returns the current trajectory
func (p *Param) Ramp() audio.Ramp {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	return p.ramp
}

// Ramps returns the number of RampTo calls
func (p *Param) Ramps() int {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	return p.ramps
}

// Oscillator is a recorded oscillator handle
type Oscillator struct {
	*handle
	wave    audio.Waveform
	running bool
	freq    *Param
	detune  *Param
}

func (o *Oscillator) Type() audio.Waveform   { return o.wave }
func (o *Oscillator) Frequency() audio.Param { return o.freq }
func (o *Oscillator) Detune() audio.Param    { return o.detune }

// FrequencyParam exposes the recorded frequency param
func (o *Oscillator) FrequencyParam() *Param { return o.freq }

// DetuneParam exposes the recorded detune param
func (o *Oscillator) DetuneParam() *Param { return o.detune }

func (o *Oscillator) Start() {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	o.running = true
}

func (o *Oscillator) Stop() {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	o.running = false
}

// Running returns true between Start and Stop
func (o *Oscillator) Running() bool {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	return o.running
}

// Gain is a recorded gain handle
type Gain struct {
	*handle
	gain *Param
}

func (g *Gain) Gain() audio.Param { return g.gain }

// GainParam exposes the recorded gain param
func (g *Gain) GainParam() *Param { return g.gain }

// Distortion is a recorded waveshaper handle
type Distortion struct {
	*handle
	amount float64
}

func (d *Distortion) Amount() float64 {
	d.eng.mu.Lock()
	defer d.eng.mu.Unlock()
	return d.amount
}

func (d *Distortion) SetAmount(amount float64) {
	d.eng.mu.Lock()
	defer d.eng.mu.Unlock()
	d.amount = amount
}

// Sink is a recorded output handle
type Sink struct {
	*handle
}

// Analyser is a recorded capture handle with settable values
type Analyser struct {
	*handle
	mode   audio.AnalyserMode
	values []float64
}

func (a *Analyser) Mode() audio.AnalyserMode { return a.mode }
func (a *Analyser) Size() int                { return len(a.values) }

func (a *Analyser) Values() []float64 {
	a.eng.mu.Lock()
	defer a.eng.mu.Unlock()
	out := make([]float64, len(a.values))
	copy(out, a.values)
	return out
}

// Fill sets every captured value to v
func (a *Analyser) Fill(v float64) {
	a.eng.mu.Lock()
	defer a.eng.mu.Unlock()
	for i := range a.values {
		a.values[i] = v
	}
}

var _ audio.Engine = (*Engine)(nil)
