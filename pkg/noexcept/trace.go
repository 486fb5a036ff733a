package noexcept

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	attrCodes    = "noexcept.codes"
	eventStashed = "noexcept.stashed"
)

func codeInts(codes []Code) []int {
	out := make([]int, 0, len(codes))
	for _, code := range codes {
		out = append(out, int(code))
	}
	return out
}

// recordRaise attaches a raised error to the span in ctx, if one is recording.
func recordRaise(ctx context.Context, err error, codes []Code) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err, trace.WithAttributes(attribute.IntSlice(attrCodes, codeInts(codes))))
}

func recordStash(ctx context.Context, e *Error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(eventStashed, trace.WithAttributes(attribute.IntSlice(attrCodes, codeInts(e.Codes()))))
}
