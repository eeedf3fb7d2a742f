package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// LogEmitter writes each Event as a line to an io.Writer, either as plain
// text or as a JSON object, matching the teacher corpus's LogEmitter
// (graph/emit/log.go). It is safe for concurrent use, though the simulator
// core itself only ever calls it from the single event-loop goroutine.
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter returns an emitter that writes to w. When jsonMode is true
// each event is written as one JSON object per line; otherwise a compact
// human-readable line is written.
func NewLogEmitter(w io.Writer, jsonMode bool) *LogEmitter {
	return &LogEmitter{writer: w, jsonMode: jsonMode}
}

func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		enc := json.NewEncoder(l.writer)
		_ = enc.Encode(event)
		return
	}

	fmt.Fprintf(l.writer, "[%s step=%d t=%dps] %s: %s %v\n",
		event.RunID, event.Step, event.Time, event.TaskID, event.Msg, event.Meta)
}

func (l *LogEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		l.Emit(e)
	}
	return nil
}

func (l *LogEmitter) Flush(_ context.Context) error { return nil }
