// Package context carries per-request correlation state.
package context

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceContext holds the correlation ids attached to one terminal request.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace attaches trace info to the context.
func WithTrace(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTrace returns the attached trace info, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// FromSpan derives trace and span ids from the active otel span. Reports
// false when the context carries no valid span, e.g. requests arriving
// outside an instrumented path.
func FromSpan(ctx context.Context) (traceID, spanID string, ok bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
