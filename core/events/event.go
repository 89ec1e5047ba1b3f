package events

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Buffer queues events for a speculative state transition. Nothing reaches
// the wrapped emitter until Flush; discarding the buffer after a failed
// transition suppresses the queued events entirely.
type Buffer struct {
	next    Emitter
	pending []Event
}

// NewBuffer wraps the provided emitter. A nil emitter is treated as a no-op
// sink, so Flush never panics.
func NewBuffer(next Emitter) *Buffer {
	return &Buffer{next: next}
}

// Emit queues the event.
func (b *Buffer) Emit(evt Event) {
	if b == nil {
		return
	}
	b.pending = append(b.pending, evt)
}

// Flush forwards all queued events in order and empties the buffer.
func (b *Buffer) Flush() {
	if b == nil {
		return
	}
	if b.next != nil {
		for _, evt := range b.pending {
			b.next.Emit(evt)
		}
	}
	b.pending = nil
}

// Pending returns the number of queued events.
func (b *Buffer) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.pending)
}

// Recorder collects every emitted event, primarily for tests and tooling.
type Recorder struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil {
		return
	}
	r.Events = append(r.Events, evt)
}
