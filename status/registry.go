// Package status holds lock-free runtime counters shared between the controller and the control surface
package status

import (
	"fmt"
	"sync/atomic"
)

// Registry groups metric tables by value type
// Writers cache pointers during init; loops write directly to atomics
type Registry struct {
	Bools  *Table[atomic.Bool]
	Ints   *Table[atomic.Int64]
	Floats *Table[Float]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  newTable[atomic.Bool](),
		Ints:   newTable[atomic.Int64](),
		Floats: newTable[Float](),
	}
}

// Len returns the metric count across all tables
func (r *Registry) Len() int {
	return r.Bools.Len() + r.Ints.Len() + r.Floats.Len()
}

// Lines formats every metric as "name=value", bools then ints then floats
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.Len())
	r.Bools.Each(func(name string, v *atomic.Bool) {
		lines = append(lines, fmt.Sprintf("%s=%t", name, v.Load()))
	})
	r.Ints.Each(func(name string, v *atomic.Int64) {
		lines = append(lines, fmt.Sprintf("%s=%d", name, v.Load()))
	})
	r.Floats.Each(func(name string, v *Float) {
		lines = append(lines, fmt.Sprintf("%s=%.3f", name, v.Load()))
	})
	return lines
}
