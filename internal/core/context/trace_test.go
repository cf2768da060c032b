package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceRoundTrip(t *testing.T) {
	tc := &TraceContext{TraceID: "t", SpanID: "s", RequestID: "r"}
	ctx := WithTrace(context.Background(), tc)

	assert.Equal(t, tc, GetTrace(ctx))
	assert.Nil(t, GetTrace(context.Background()))
}

func TestFromSpanWithoutSpan(t *testing.T) {
	_, _, ok := FromSpan(context.Background())
	assert.False(t, ok)
}

func TestFromSpanUsesSpanContext(t *testing.T) {
	tid, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	gotTrace, gotSpan, ok := FromSpan(ctx)
	require.True(t, ok)
	assert.Equal(t, tid.String(), gotTrace)
	assert.Equal(t, sid.String(), gotSpan)
}
