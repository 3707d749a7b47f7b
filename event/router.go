package event

// Handler processes routed events within a context T
type Handler[T any] interface {
	// HandleEvent is called synchronously on the consumer goroutine
	HandleEvent(ctx T, ev Event)

	// EventTypes returns the types this handler receives
	EventTypes() []Type
}

// HandlerFunc adapts a function to Handler for a fixed set of types
type HandlerFunc[T any] struct {
	Types []Type
	Fn    func(ctx T, ev Event)
}

func (h HandlerFunc[T]) HandleEvent(ctx T, ev Event) { h.Fn(ctx, ev) }
func (h HandlerFunc[T]) EventTypes() []Type          { return h.Types }

// Router drains a queue into registered handlers
// Handlers for the same type run in registration order
type Router[T any] struct {
	handlers map[Type][]Handler[T]
	queue    *Queue
}

// NewRouter creates a router attached to queue
func NewRouter[T any](queue *Queue) *Router[T] {
	return &Router[T]{
		handlers: make(map[Type][]Handler[T]),
		queue:    queue,
	}
}

// Register adds handler for its declared types
func (r *Router[T]) Register(handler Handler[T]) {
	for _, t := range handler.EventTypes() {
		r.handlers[t] = append(r.handlers[t], handler)
	}
}

// DispatchAll consumes every pending event in FIFO order, returns the number consumed
func (r *Router[T]) DispatchAll(ctx T) int {
	events := r.queue.Consume()
	for _, ev := range events {
		for _, h := range r.handlers[ev.Type] {
			h.HandleEvent(ctx, ev)
		}
	}
	return len(events)
}

// HandlerCount returns the number of handlers for t
func (r *Router[T]) HandlerCount(t Type) int {
	return len(r.handlers[t])
}
