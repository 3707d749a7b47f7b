package audio

import (
	"time"

	"github.com/lixenwraith/morph-synth/parameter"
)

// processor renders one block of a node given its summed inputs
// t0 is the engine frame of the first sample
type processor interface {
	process(t0 int64, in, out []float64)
}

// graphNode is a pull-model vertex, rendered at most once per block
// All fields are guarded by the owning engine's mutex
type graphNode struct {
	eng      *BeepEngine
	id       uint64
	proc     processor
	sources  []*graphNode
	dests    []*graphNode
	mix      []float64
	out      []float64
	block    uint64
	disposed bool
}

func (n *graphNode) render(block uint64, t0 int64, frames int) []float64 {
	if n.block == block {
		return n.out[:frames]
	}
	n.block = block

	in := n.mix[:frames]
	for i := range in {
		in[i] = 0
	}
	for _, src := range n.sources {
		s := src.render(block, t0, frames)
		for i := range in {
			in[i] += s[i]
		}
	}

	out := n.out[:frames]
	n.proc.process(t0, in, out)
	return out
}

// Connect routes this node's output into dst
func (n *graphNode) Connect(dst Node) error {
	target, err := n.eng.resolve(dst)
	if err != nil {
		return err
	}

	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()

	if n.disposed || target.disposed {
		return ErrNodeDisposed
	}
	if _, ok := n.proc.(*sinkProc); ok {
		return ErrSinkOutput
	}
	for _, d := range n.dests {
		if d == target {
			return nil
		}
	}
	n.dests = append(n.dests, target)
	target.sources = append(target.sources, n)
	return nil
}

// Dispose detaches the node from the graph
func (n *graphNode) Dispose() {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	n.eng.detach(n)
}

func (n *graphNode) node() *graphNode { return n }

// removeNode drops target from list without preserving capacity semantics
func removeNode(list []*graphNode, target *graphNode) []*graphNode {
	for i, x := range list {
		if x == target {
			last := len(list) - 1
			copy(list[i:], list[i+1:])
			list[last] = nil
			return list[:last]
		}
	}
	return list
}

// --- Parameters ---

// beepParam is a ramped value read on the render goroutine
type beepParam struct {
	eng  *BeepEngine
	ramp Ramp
}

func (p *beepParam) Value() float64 {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	return p.ramp.At(p.eng.nowLocked())
}

func (p *beepParam) SetValue(v float64) {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	p.ramp = Hold(v)
}

func (p *beepParam) RampTo(v float64, d time.Duration) {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()
	p.ramp = p.ramp.Retarget(p.eng.nowLocked(), v, d)
}

// at evaluates the ramp at a frame offset, caller holds the engine lock
func (p *beepParam) at(frame int64) float64 {
	return p.ramp.At(p.eng.frameTime(frame))
}

// --- Oscillator ---

type oscProc struct {
	wave    Waveform
	rate    float64
	phase   float64
	running bool
	freq    *beepParam
	detune  *beepParam
}

func (o *oscProc) process(t0 int64, _, out []float64) {
	if !o.running {
		for i := range out {
			out[i] = 0
		}
		return
	}
	for i := range out {
		frame := t0 + int64(i)
		f := o.freq.at(frame) * detuneRatio(o.detune.at(frame))
		out[i] = waveSample(o.wave, o.phase)
		o.phase += f / o.rate
		if o.phase >= 1.0 {
			o.phase -= float64(int(o.phase))
		}
	}
}

type beepOscillator struct {
	*graphNode
	osc *oscProc
}

func (o *beepOscillator) Type() Waveform   { return o.osc.wave }
func (o *beepOscillator) Frequency() Param { return o.osc.freq }
func (o *beepOscillator) Detune() Param    { return o.osc.detune }

func (o *beepOscillator) Start() {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	if !o.disposed {
		o.osc.running = true
	}
}

func (o *beepOscillator) Stop() {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	o.osc.running = false
}

// --- Gain ---

type gainProc struct {
	gain *beepParam
}

func (g *gainProc) process(t0 int64, in, out []float64) {
	for i := range out {
		out[i] = in[i] * g.gain.at(t0+int64(i))
	}
}

type beepGain struct {
	*graphNode
	gain *gainProc
}

func (g *beepGain) Gain() Param { return g.gain.gain }

// --- Distortion ---

type distProc struct {
	amount float64
}

func (d *distProc) process(_ int64, in, out []float64) {
	for i := range out {
		out[i] = distortionCurve(in[i], d.amount)
	}
}

type beepDistortion struct {
	*graphNode
	dist *distProc
}

func (d *beepDistortion) Amount() float64 {
	d.eng.mu.Lock()
	defer d.eng.mu.Unlock()
	return d.dist.amount
}

func (d *beepDistortion) SetAmount(amount float64) {
	d.eng.mu.Lock()
	defer d.eng.mu.Unlock()
	d.dist.amount = clampUnit(amount)
}

// --- Sink ---

type sinkProc struct{}

func (sinkProc) process(_ int64, in, out []float64) {
	copy(out, in)
}

type beepSink struct {
	*graphNode
}

// newGraphNode allocates a vertex with block buffers sized for the engine
func newGraphNode(eng *BeepEngine, proc processor) *graphNode {
	return &graphNode{
		eng:   eng,
		proc:  proc,
		mix:   make([]float64, parameter.AudioBlockSamples),
		out:   make([]float64, parameter.AudioBlockSamples),
		block: ^uint64(0),
	}
}
