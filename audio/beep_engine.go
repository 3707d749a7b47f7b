package audio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/morph-synth/parameter"
)

// BeepEngine renders a pull-model node graph through the beep speaker
// One mutex guards graph topology, parameters and the render clock
type BeepEngine struct {
	config *Config
	rate   beep.SampleRate
	output beep.Streamer // Trimmed root streamer handed to the speaker

	mu       sync.Mutex
	frames   int64  // Rendered frames, the engine clock
	block    uint64 // Render pass counter for node caches
	nextID   uint64
	nodes    map[uint64]*graphNode
	sinks    []*graphNode
	taps     []*graphNode
	scratch  []float64
	recorder *Recorder
	closed   bool

	running    atomic.Bool
	silentMode atomic.Bool
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewBeepEngine creates an engine, output starts on Resume
func NewBeepEngine(cfg ...*Config) *BeepEngine {
	config := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		config = cfg[0]
	}

	e := &BeepEngine{
		config:   config,
		rate:     beep.SampleRate(config.SampleRate),
		nodes:    make(map[uint64]*graphNode),
		scratch:  make([]float64, parameter.AudioBlockSamples),
		stopChan: make(chan struct{}),
	}
	e.output = newVolume(e, config.MasterVolume)
	return e
}

// Resume opens the speaker, or starts a silent render pump when audio is disabled
// Speaker failure leaves the engine untouched so a later call can retry
func (e *BeepEngine) Resume() error {
	if e.running.Load() {
		return nil
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrEngineClosed
	}

	if !e.config.Enabled {
		e.silentMode.Store(true)
		e.startPump()
		e.running.Store(true)
		return nil
	}

	if err := speaker.Init(e.rate, e.rate.N(e.config.BufferDuration)); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	speaker.Play(e.output)
	e.running.Store(true)
	return nil
}

// startPump renders the graph on a ticker when no device consumes it
func (e *BeepEngine) startPump() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ticker := time.NewTicker(e.config.BufferDuration)
		defer ticker.Stop()

		buf := make([][2]float64, e.rate.N(e.config.BufferDuration))
		for {
			select {
			case <-e.stopChan:
				return
			case <-ticker.C:
				e.output.Stream(buf)
			}
		}
	}()
}

// Stream renders the graph, implements beep.Streamer
func (e *BeepEngine) Stream(samples [][2]float64) (n int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	done := 0
	for done < len(samples) {
		frames := len(samples) - done
		if frames > len(e.scratch) {
			frames = len(e.scratch)
		}
		e.block++

		buf := e.scratch[:frames]
		for i := range buf {
			buf[i] = 0
		}
		for _, sink := range e.sinks {
			out := sink.render(e.block, e.frames, frames)
			for i := range buf {
				buf[i] += out[i]
			}
		}
		// Taps pull cached upstream blocks, so they never advance shared nodes twice
		for _, tap := range e.taps {
			tap.render(e.block, e.frames, frames)
		}

		for i, v := range buf {
			samples[done+i][0] = v
			samples[done+i][1] = v
		}
		if e.recorder != nil {
			e.recorder.capture(buf)
		}

		e.frames += int64(frames)
		done += frames
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (e *BeepEngine) Err() error { return nil }

// Now returns elapsed engine time derived from rendered frames
func (e *BeepEngine) Now() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nowLocked()
}

func (e *BeepEngine) nowLocked() time.Duration {
	return e.frameTime(e.frames)
}

func (e *BeepEngine) frameTime(frame int64) time.Duration {
	return time.Duration(float64(frame) / float64(e.rate) * float64(time.Second))
}

// CreateOscillator allocates a stopped oscillator
func (e *BeepEngine) CreateOscillator(wave Waveform, freq float64) (Oscillator, error) {
	proc := &oscProc{
		wave:   wave,
		rate:   float64(e.rate),
		freq:   &beepParam{eng: e, ramp: Hold(freq)},
		detune: &beepParam{eng: e, ramp: Hold(0)},
	}
	n, err := e.register(proc)
	if err != nil {
		return nil, err
	}
	return &beepOscillator{graphNode: n, osc: proc}, nil
}

// CreateGain allocates a gain stage
func (e *BeepEngine) CreateGain(initial float64) (Gain, error) {
	proc := &gainProc{gain: &beepParam{eng: e, ramp: Hold(initial)}}
	n, err := e.register(proc)
	if err != nil {
		return nil, err
	}
	return &beepGain{graphNode: n, gain: proc}, nil
}

// CreateDistortion allocates a waveshaper
func (e *BeepEngine) CreateDistortion(amount float64) (Distortion, error) {
	proc := &distProc{amount: clampUnit(amount)}
	n, err := e.register(proc)
	if err != nil {
		return nil, err
	}
	return &beepDistortion{graphNode: n, dist: proc}, nil
}

// CreateMasterSink allocates an output summed into the speaker stream
func (e *BeepEngine) CreateMasterSink() (Sink, error) {
	n, err := e.register(&sinkProc{})
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.sinks = append(e.sinks, n)
	e.mu.Unlock()
	return &beepSink{graphNode: n}, nil
}

// CreateAnalyser allocates a capture tap, size must be a power of two
func (e *BeepEngine) CreateAnalyser(mode AnalyserMode, size int) (Analyser, error) {
	if !validAnalyserSize(size) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAnalyserSize, size)
	}
	proc := newAnalyserProc(mode, size)
	n, err := e.register(proc)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.taps = append(e.taps, n)
	e.mu.Unlock()
	return &beepAnalyser{graphNode: n, an: proc}, nil
}

func (e *BeepEngine) register(proc processor) (*graphNode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}

	n := newGraphNode(e, proc)
	e.nextID++
	n.id = e.nextID
	e.nodes[n.id] = n
	return n, nil
}

// resolve maps a public handle to this engine's graph vertex
func (e *BeepEngine) resolve(dst Node) (*graphNode, error) {
	h, ok := dst.(interface{ node() *graphNode })
	if !ok {
		return nil, ErrForeignNode
	}
	n := h.node()
	if n.eng != e {
		return nil, ErrForeignNode
	}
	return n, nil
}

// detach unlinks n from the graph, caller holds the lock
func (e *BeepEngine) detach(n *graphNode) {
	if n.disposed {
		return
	}
	n.disposed = true

	for _, src := range n.sources {
		src.dests = removeNode(src.dests, n)
	}
	for _, dst := range n.dests {
		dst.sources = removeNode(dst.sources, n)
	}
	n.sources = nil
	n.dests = nil

	e.sinks = removeNode(e.sinks, n)
	e.taps = removeNode(e.taps, n)
	delete(e.nodes, n.id)
}

// LiveNodes returns the number of undisposed nodes
func (e *BeepEngine) LiveNodes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)
}

// IsSilent returns true when output is rendered without a device
func (e *BeepEngine) IsSilent() bool {
	return e.silentMode.Load()
}

// IsRunning returns true once Resume has succeeded
func (e *BeepEngine) IsRunning() bool {
	return e.running.Load()
}

// StartRecording captures the master output to a WAV file until StopRecording
func (e *BeepEngine) StartRecording(path string) error {
	rec, err := NewRecorder(path, int(e.rate))
	if err != nil {
		return err
	}

	e.mu.Lock()
	prev := e.recorder
	e.recorder = rec
	e.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			log.Printf("audio: closing previous recording: %v", err)
		}
	}
	return nil
}

// StopRecording finalises the active WAV capture
func (e *BeepEngine) StopRecording() error {
	e.mu.Lock()
	rec := e.recorder
	e.recorder = nil
	e.mu.Unlock()

	if rec == nil {
		return nil
	}
	return rec.Close()
}

// Close halts output and releases every remaining node
func (e *BeepEngine) Close() error {
	e.stopOnce.Do(func() {
		close(e.stopChan)
	})
	e.wg.Wait()

	if e.running.CompareAndSwap(true, false) && !e.silentMode.Load() {
		speaker.Clear()
	}

	e.mu.Lock()
	e.closed = true
	leaked := len(e.nodes)
	for _, n := range e.nodes {
		e.detach(n)
	}
	e.mu.Unlock()

	if leaked > 0 {
		log.Printf("audio: released %d nodes at close", leaked)
	}
	return e.StopRecording()
}
