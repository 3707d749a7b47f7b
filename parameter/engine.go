package parameter

import "time"

// Event Loop Timing
const (
	// TickInterval is the controller loop period for draining events and firing timers
	TickInterval = 10 * time.Millisecond

	// UIRefreshInterval is the status redraw period of the control surface
	UIRefreshInterval = 50 * time.Millisecond
)

// Event Queue Limits
const (
	// EventQueueSize is the fixed capacity of the event ring buffer
	EventQueueSize = 256

	// EventBufferMask is the bitmask for fast modulo operations (256 - 1)
	EventBufferMask = 255
)
