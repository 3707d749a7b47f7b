// Package engine runs the single-threaded control loop between the event queue and the synth
package engine

import (
	"errors"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/morph-synth/audio"
	"github.com/lixenwraith/morph-synth/clock"
	"github.com/lixenwraith/morph-synth/core"
	"github.com/lixenwraith/morph-synth/event"
	"github.com/lixenwraith/morph-synth/parameter"
	"github.com/lixenwraith/morph-synth/status"
	"github.com/lixenwraith/morph-synth/synth"
)

// Snapshot is the read-only view published for the control surface after every tick
type Snapshot struct {
	Selected  []string
	Playing   []string
	Fading    int
	Knobs     Knobs
	CanStart  bool
	CanStop   bool
	CanChange bool
	Level     float64 // Output peak, linear
	LastError string
}

// Controller owns the synth and is the only goroutine that touches it
type Controller struct {
	synth  *synth.Synth
	sched  *clock.Scheduler
	queue  *event.Queue
	router *event.Router[*Controller]

	selected []string
	knobs    Knobs
	lastErr  error

	snapshot atomic.Pointer[Snapshot]

	// Cached metric pointers
	statTicks       *atomic.Int64
	statVoices      *atomic.Int64
	statFading      *atomic.Int64
	statOverwritten *atomic.Int64
	statLevel       *status.Float
	statPeak        *status.Float
	statPlaying     *atomic.Bool

	tickInterval time.Duration
	done         chan struct{}
	doneOnce     sync.Once
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	running      atomic.Bool
}

// NewController wires s to queue; knobs start at their defaults and are applied immediately
func NewController(s *synth.Synth, sched *clock.Scheduler, queue *event.Queue, reg *status.Registry) *Controller {
	c := &Controller{
		synth:           s,
		sched:           sched,
		queue:           queue,
		router:          event.NewRouter[*Controller](queue),
		knobs:           DefaultKnobs(),
		tickInterval:    parameter.TickInterval,
		done:            make(chan struct{}),
		stopChan:        make(chan struct{}),
		statTicks:       reg.Ints.Get("engine.ticks"),
		statVoices:      reg.Ints.Get("synth.voices"),
		statFading:      reg.Ints.Get("synth.fading"),
		statOverwritten: reg.Ints.Get("event.overwritten"),
		statLevel:       reg.Floats.Get("audio.level"),
		statPeak:        reg.Floats.Get("audio.peak"),
		statPlaying:     reg.Bools.Get("synth.playing"),
	}
	c.knobs.applyAll(s)
	c.registerHandlers()
	c.publish()
	return c
}

func (c *Controller) registerHandlers() {
	c.router.Register(event.HandlerFunc[*Controller]{
		Types: []event.Type{event.EventNoteToggle},
		Fn:    (*Controller).handleNoteToggle,
	})
	c.router.Register(event.HandlerFunc[*Controller]{
		Types: []event.Type{event.EventParamChange},
		Fn:    (*Controller).handleParamChange,
	})
	c.router.Register(event.HandlerFunc[*Controller]{
		Types: []event.Type{event.EventTransportStart, event.EventTransportStop, event.EventChangeChord},
		Fn:    (*Controller).handleTransport,
	})
	c.router.Register(event.HandlerFunc[*Controller]{
		Types: []event.Type{event.EventQuit},
		Fn:    func(c *Controller, _ event.Event) { c.signalDone() },
	})
}

// handleNoteToggle adds or removes a canonical note name, preserving toggle order
func (c *Controller) handleNoteToggle(ev event.Event) {
	p, ok := ev.Payload.(*event.NoteTogglePayload)
	if !ok {
		return
	}
	midi, err := audio.ParseNote(p.Note)
	if err != nil {
		log.Printf("engine: ignoring toggle: %v", err)
		return
	}
	note := audio.NoteName(midi)

	if i := slices.Index(c.selected, note); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		return
	}
	c.selected = append(c.selected, note)
}

func (c *Controller) handleParamChange(ev event.Event) {
	p, ok := ev.Payload.(*event.ParamChangePayload)
	if !ok {
		return
	}
	if err := c.knobs.Set(c.synth, p.Index, p.Value); err != nil {
		log.Printf("engine: %v", err)
	}
}

func (c *Controller) handleTransport(ev event.Event) {
	var err error
	switch ev.Type {
	case event.EventTransportStart:
		err = c.synth.Start(c.selection())
	case event.EventTransportStop:
		c.synth.Stop()
	case event.EventChangeChord:
		err = c.synth.ChangeChord(c.selection())
	}

	if err != nil {
		if errors.Is(err, audio.ErrEngineUnavailable) {
			log.Printf("engine: %s: %v (retry on next start)", ev.Type, err)
		} else {
			log.Printf("engine: %s: %v", ev.Type, err)
		}
	}
	c.lastErr = err
}

func (c *Controller) selection() []string {
	return slices.Clone(c.selected)
}

// Tick drains pending events, fires due disposals, and publishes a snapshot
// Called by the loop, or directly by tests driving a mock clock
func (c *Controller) Tick() {
	c.router.DispatchAll(c)
	c.sched.Run()
	c.publish()
	c.statTicks.Add(1)
}

func (c *Controller) publish() {
	pool := c.synth.Pool()
	snap := &Snapshot{
		Selected:  c.selection(),
		Playing:   pool.Notes(),
		Fading:    pool.FadingCount(),
		Knobs:     c.knobs,
		CanStart:  c.synth.CanStart(c.selected),
		CanStop:   c.synth.CanStop(),
		CanChange: c.synth.CanChange(c.selected),
		Level:     outputLevel(c.synth.Analyser()),
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	c.snapshot.Store(snap)

	c.statVoices.Store(int64(pool.Len()))
	c.statFading.Store(int64(pool.FadingCount()))
	c.statOverwritten.Store(int64(c.queue.Overwritten()))
	c.statLevel.Store(snap.Level)
	c.statPeak.Max(snap.Level)
	c.statPlaying.Store(len(snap.Playing) > 0)
}

// outputLevel reduces an analyser capture to a linear peak
func outputLevel(an audio.Analyser) float64 {
	if an == nil {
		return 0
	}
	values := an.Values()
	if an.Mode() == audio.AnalyserWaveform {
		return audio.Peak(values)
	}
	if len(values) == 0 {
		return 0
	}
	return audio.DbToGain(slices.Max(values))
}

// Snapshot returns the latest published state, safe from any goroutine
func (c *Controller) Snapshot() Snapshot {
	return *c.snapshot.Load()
}

// Queue returns the intent queue producers push to
func (c *Controller) Queue() *event.Queue {
	return c.queue
}

// Done is closed when a quit event has been handled
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) signalDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Start launches the tick loop
func (c *Controller) Start() {
	if c.running.CompareAndSwap(false, true) {
		c.wg.Add(1)
		core.Go(c.loop)
	}
}

// Stop halts the loop and silences every voice
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		if c.running.CompareAndSwap(true, false) {
			close(c.stopChan)
			c.wg.Wait()
		}
		c.synth.Stop()
		c.publish()
	})
}

// loop ticks on a deadline, catching up without bursting when it falls behind
func (c *Controller) loop() {
	defer c.wg.Done()

	next := time.Now().Add(c.tickInterval)
	timer := time.NewTimer(c.tickInterval)
	defer timer.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-timer.C:
		}

		c.Tick()

		now := time.Now()
		next = next.Add(c.tickInterval)
		if now.Sub(next) > c.tickInterval*2 {
			next = now.Add(c.tickInterval)
		}
		sleep := next.Sub(now)
		if sleep < 0 {
			sleep = 0
		}
		timer.Reset(sleep)
	}
}
