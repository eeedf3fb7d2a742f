package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter maps each Event onto a short-lived OpenTelemetry span, mirroring
// the teacher corpus's graph/emit/otel.go. Every event becomes its own span
// rather than a nested trace, since the simulator's events are discrete
// point-in-time occurrences, not a call stack.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter returns an emitter that records spans via tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()

	span.SetAttributes(
		attribute.String("run_id", event.RunID),
		attribute.Int64("step", event.Step),
		attribute.Int64("sim_time_ps", event.Time),
		attribute.String("task_id", event.TaskID),
	)
	for k, v := range event.Meta {
		span.SetAttributes(attribute.String(k, toString(v)))
	}
	span.SetStatus(codes.Ok, "")
}

func (o *OTelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		o.Emit(e)
	}
	return ctx.Err()
}

func (o *OTelEmitter) Flush(ctx context.Context) error { return ctx.Err() }

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
