package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/lixenwraith/morph-synth/parameter"
)

// recorderQueueSize bounds blocks buffered between render and disk
const recorderQueueSize = 64

// Recorder streams mono 16-bit PCM to a WAV file off the render goroutine
type Recorder struct {
	file   *os.File
	enc    *wav.Encoder
	format *goaudio.Format
	blocks chan []int
	done   chan struct{}
	once   sync.Once

	dropped  atomic.Uint64
	written  atomic.Uint64
	writeErr error // Owned by loop until done is closed
}

// NewRecorder creates path and starts the encoder goroutine
func NewRecorder(path string, sampleRate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}

	r := &Recorder{
		file:   f,
		enc:    wav.NewEncoder(f, sampleRate, parameter.AudioBitDepth, 1, 1),
		format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		blocks: make(chan []int, recorderQueueSize),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

// capture converts a float block and queues it, dropping when the writer lags
func (r *Recorder) capture(buf []float64) {
	data := make([]int, len(buf))
	for i, v := range buf {
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		data[i] = int(v * 32767)
	}

	select {
	case r.blocks <- data:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for data := range r.blocks {
		if r.writeErr != nil {
			continue
		}
		buf := &goaudio.IntBuffer{
			Format:         r.format,
			Data:           data,
			SourceBitDepth: parameter.AudioBitDepth,
		}
		if err := r.enc.Write(buf); err != nil {
			r.writeErr = err
			continue
		}
		r.written.Add(uint64(len(data)))
	}
}

// Stats returns written frames and dropped blocks
func (r *Recorder) Stats() (written, dropped uint64) {
	return r.written.Load(), r.dropped.Load()
}

// Close drains pending blocks and finalises the WAV header
func (r *Recorder) Close() error {
	var err error
	r.once.Do(func() {
		close(r.blocks)
		<-r.done
		err = errors.Join(r.writeErr, r.enc.Close(), r.file.Close())
	})
	return err
}
