package audio

import (
	"errors"
	"time"
)

// Waveform selects an oscillator shape
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveTriangle
	WaveSawtooth
	waveformCount
)

// Waveforms lists every oscillator shape in voice order
var Waveforms = [waveformCount]Waveform{WaveSine, WaveSquare, WaveTriangle, WaveSawtooth}

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSquare:
		return "square"
	case WaveTriangle:
		return "triangle"
	case WaveSawtooth:
		return "sawtooth"
	default:
		return "unknown"
	}
}

// AnalyserMode selects what an analyser reports
type AnalyserMode int

const (
	AnalyserWaveform AnalyserMode = iota // Raw output samples
	AnalyserFFT                          // Magnitude spectrum in dB
)

func (m AnalyserMode) String() string {
	if m == AnalyserFFT {
		return "fft"
	}
	return "waveform"
}

// ParseAnalyserMode maps a config string to a mode
func ParseAnalyserMode(s string) (AnalyserMode, error) {
	switch s {
	case "waveform", "":
		return AnalyserWaveform, nil
	case "fft":
		return AnalyserFFT, nil
	default:
		return AnalyserWaveform, ErrUnknownAnalyserMode
	}
}

// Param is an automatable node parameter
// RampTo returns immediately, the ramp progresses on the engine clock
type Param interface {
	Value() float64
	SetValue(v float64)
	RampTo(v float64, d time.Duration)
}

// Node is any element of the audio graph
type Node interface {
	// Connect routes this node's output into dst
	Connect(dst Node) error

	// Dispose detaches the node and releases it, later calls are no-ops
	Dispose()
}

// Oscillator is a periodic waveform source
type Oscillator interface {
	Node
	Type() Waveform
	Start()
	Stop()
	Frequency() Param
	Detune() Param // Cents
}

// Gain scales its summed inputs
type Gain interface {
	Node
	Gain() Param
}

// Distortion waveshapes its summed inputs
type Distortion interface {
	Node
	Amount() float64
	SetAmount(amount float64)
}

// Sink is the audible output
type Sink interface {
	Node
}

// Analyser captures recent output for display
type Analyser interface {
	Node
	Mode() AnalyserMode
	Size() int
	Values() []float64
}

// Engine is the audio primitive factory consumed by the synth
type Engine interface {
	// Resume starts audio output, may fail when no device is available
	Resume() error

	// Now returns elapsed engine time used by parameter ramps
	Now() time.Duration

	CreateOscillator(wave Waveform, freq float64) (Oscillator, error)
	CreateGain(initial float64) (Gain, error)
	CreateDistortion(amount float64) (Distortion, error)
	CreateMasterSink() (Sink, error)
	CreateAnalyser(mode AnalyserMode, size int) (Analyser, error)

	Close() error
}

// Sentinel errors
var (
	ErrEngineUnavailable   = errors.New("audio engine unavailable")
	ErrEngineClosed        = errors.New("audio engine closed")
	ErrNodeDisposed        = errors.New("audio node disposed")
	ErrForeignNode         = errors.New("audio node belongs to another engine")
	ErrSinkOutput          = errors.New("sink has no output")
	ErrUnknownAnalyserMode = errors.New("unknown analyser mode")
	ErrInvalidAnalyserSize = errors.New("analyser size must be a power of two")
	ErrUnknownNote         = errors.New("unknown note")
)
