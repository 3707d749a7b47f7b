package event

import (
	"math"
	"math/bits"
	"sync/atomic"

	"github.com/lixenwraith/morph-synth/parameter"
)

// Queue is a lock-free MPSC ring buffer for control intents
// Thread-Safety:
//   - Push: Lock-free CAS, any goroutine (UI, signal handler)
//   - Consume: Single consumer (controller loop)
//   - Published flags prevent reading partial writes
//
// Knob changes bypass the ring: each knob keeps only its latest value and is emitted once per Consume,
// so a burst of knob moves cannot evict a transport intent
//
// Overflow: Oldest ring events overwritten when full, counted in Overwritten
type Queue struct {
	events      [parameter.EventQueueSize]Event
	published   [parameter.EventQueueSize]atomic.Bool // True = slot fully written
	head        atomic.Uint64                         // Read index
	tail        atomic.Uint64                         // Write index
	overwritten atomic.Uint64

	knobs     [parameter.KnobCount]atomic.Uint64 // Float bits of the latest value per knob
	knobDirty atomic.Uint32                      // Bit i set = knob i+1 changed since last Consume
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Push claims a slot with CAS, writes, then publishes
// Valid knob changes are coalesced into their knob slot instead
func (q *Queue) Push(ev Event) {
	if p, ok := ev.Payload.(*ParamChangePayload); ok && ev.Type == EventParamChange &&
		p.Index >= 1 && p.Index <= parameter.KnobCount {
		q.knobs[p.Index-1].Store(math.Float64bits(p.Value))
		q.knobDirty.Or(1 << (p.Index - 1)) // MUST be after store
		return
	}

	for {
		tail := q.tail.Load()
		next := tail + 1
		if !q.tail.CompareAndSwap(tail, next) {
			continue
		}

		idx := tail & parameter.EventBufferMask
		q.events[idx] = ev
		q.published[idx].Store(true) // MUST be after write

		// Drop the oldest unread event when lapping the reader
		head := q.head.Load()
		if next-head > parameter.EventQueueSize {
			if q.head.CompareAndSwap(head, next-parameter.EventQueueSize) {
				q.overwritten.Add(1)
			}
		}
		return
	}
}

// Consume returns the latest value of every changed knob in knob order,
// then pending ring events in FIFO order
// Ring reads stop early at a slot whose writer has not published yet
func (q *Queue) Consume() []Event {
	knobs := q.consumeKnobs()
	ring := q.consumeRing()
	if len(knobs) == 0 {
		return ring
	}
	return append(knobs, ring...)
}

func (q *Queue) consumeKnobs() []Event {
	dirty := q.knobDirty.Swap(0)
	if dirty == 0 {
		return nil
	}
	batch := make([]Event, 0, bits.OnesCount32(dirty))
	for i := range parameter.KnobCount {
		if dirty&(1<<i) != 0 {
			batch = append(batch, ParamChange(i+1, math.Float64frombits(q.knobs[i].Load())))
		}
	}
	return batch
}

func (q *Queue) consumeRing() []Event {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if tail == head {
			return nil
		}

		available := tail - head
		if available > parameter.EventQueueSize {
			available = parameter.EventQueueSize
			head = tail - parameter.EventQueueSize
		}

		batch := make([]Event, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (head + i) & parameter.EventBufferMask
			if !q.published[idx].Load() {
				break
			}
			batch = append(batch, q.events[idx])
			q.published[idx].Store(false)
		}

		if q.head.CompareAndSwap(head, head+uint64(len(batch))) {
			if len(batch) == 0 {
				return nil
			}
			return batch
		}
	}
}

// Len returns the approximate pending count, changed knobs included
func (q *Queue) Len() int {
	knobs := bits.OnesCount32(q.knobDirty.Load())
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return knobs
	}
	if diff := int(tail - head); diff < parameter.EventQueueSize {
		return knobs + diff
	}
	return knobs + parameter.EventQueueSize
}

// Overwritten returns how many unread events were lost to overflow
func (q *Queue) Overwritten() uint64 {
	return q.overwritten.Load()
}
