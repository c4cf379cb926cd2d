package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type recordingConn struct {
	msgs []*nats.Msg
	err  error
}

func (c *recordingConn) PublishMsg(m *nats.Msg) error {
	c.msgs = append(c.msgs, m)
	return c.err
}

func TestPublish_SubjectBodyAndTraceHeader(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	defer span.End()

	conn := &recordingConn{}
	p := newPublisher(conn, logger.NewNop())

	require.NoError(t, p.Publish(ctx, "listing.created", map[string]string{"listing_id": "abc"}))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "listing.created", msg.Subject)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &body))
	assert.Equal(t, "abc", body["listing_id"])
	assert.Contains(t, msg.Header.Get("traceparent"), span.SpanContext().TraceID().String())
	assert.Empty(t, msg.Header.Get("Traceparent"))

	consumerCtx := otel.GetTextMapPropagator().Extract(context.Background(), headerCarrier(msg.Header))
	remote := trace.SpanContextFromContext(consumerCtx)
	assert.True(t, remote.IsRemote())
	assert.Equal(t, span.SpanContext().TraceID(), remote.TraceID())
}

func TestHeaderCarrier_KeepsKeyCase(t *testing.T) {
	h := nats.Header{}
	c := headerCarrier(h)
	c.Set("traceparent", "00-abc-def-01")

	assert.Equal(t, "00-abc-def-01", h.Get("traceparent"))
	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
}

func TestPublish_Errors(t *testing.T) {
	p := newPublisher(&recordingConn{err: errors.New("no responders")}, logger.NewNop())
	err := p.Publish(context.Background(), "listing.deleted", struct{}{})
	assert.ErrorContains(t, err, "publish listing.deleted")

	err = p.Publish(context.Background(), "listing.deleted", make(chan int))
	assert.ErrorContains(t, err, "marshal event")
}

func TestClose_WithoutConnection(t *testing.T) {
	p := newPublisher(&recordingConn{}, logger.NewNop())
	assert.NotPanics(t, p.Close)
}
