package status

import (
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// Float is a float64 stored as bits in an atomic word, zero value reads 0.0
type Float struct {
	bits atomic.Uint64
}

func (f *Float) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *Float) Load() float64   { return math.Float64frombits(f.bits.Load()) }

// Max raises the stored value to v if v is larger, used for peak-hold gauges
func (f *Float) Max(v float64) {
	for {
		old := f.bits.Load()
		if math.Float64frombits(old) >= v {
			return
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}

// Table maps metric names to stable pointers of T
// Lookups after the first are read-locked; writers keep the pointer and skip the table
type Table[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func newTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[string]*T)}
}

// Get returns the metric for name, allocating it on first use
func (t *Table[T]) Get(name string) *T {
	t.mu.RLock()
	ptr, ok := t.items[name]
	t.mu.RUnlock()
	if ok {
		return ptr
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if ptr, ok := t.items[name]; ok {
		return ptr
	}
	ptr = new(T)
	t.items[name] = ptr
	return ptr
}

// Each visits metrics in name order
func (t *Table[T]) Each(fn func(name string, ptr *T)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, name := range slices.Sorted(maps.Keys(t.items)) {
		fn(name, t.items[name])
	}
}

// Len returns the number of metrics
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
