package emit

import "context"

// Emitter receives Events produced by a simulator run. Implementations are
// backend-agnostic: a run can be observed via structured logging, traces,
// metrics, or any combination, by composing emitters (see MultiEmitter).
//
// Emit must not block the event loop for long; an emitter that needs to do
// expensive I/O should buffer and flush asynchronously, draining on Flush.
type Emitter interface {
	// Emit records a single event. Implementations must not panic.
	Emit(event Event)

	// EmitBatch records multiple events at once, allowing batching
	// backends (e.g. the SQLite emitter) to avoid one round-trip per
	// event.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush forces any buffered events to be written out.
	Flush(ctx context.Context) error
}

// MultiEmitter fans a single Event out to every child emitter, in order.
// The first error from EmitBatch/Flush is returned; later children still
// run.
type MultiEmitter struct {
	Emitters []Emitter
}

// NewMultiEmitter returns an emitter that forwards to every child in order.
func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{Emitters: emitters}
}

func (m *MultiEmitter) Emit(event Event) {
	for _, e := range m.Emitters {
		e.Emit(event)
	}
}

func (m *MultiEmitter) EmitBatch(ctx context.Context, events []Event) error {
	var firstErr error
	for _, e := range m.Emitters {
		if err := e.EmitBatch(ctx, events); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiEmitter) Flush(ctx context.Context) error {
	var firstErr error
	for _, e := range m.Emitters {
		if err := e.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
