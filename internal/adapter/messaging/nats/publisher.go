package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("car-listing-service/nats-publisher")

// msgPublisher is the slice of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher emits listing lifecycle events as JSON. Trace context travels in the
// message headers so consumers can continue the request's trace.
type Publisher struct {
	conn   *nats.Conn
	pub    msgPublisher
	logger *logger.Logger
}

// NewPublisher connects to url, naming the connection after appName.
func NewPublisher(url, appName string, log *logger.Logger) (*Publisher, error) {
	log = log.Named("NATSPublisher")
	log.Info("NATSPublisher: connecting", zap.String("url", url))

	conn, err := nats.Connect(url,
		nats.Name(appName+" listing events"),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATSPublisher: disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATSPublisher: reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATSPublisher: connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATSPublisher: connected", zap.String("url", conn.ConnectedUrl()))

	p := newPublisher(conn, log)
	p.conn = conn
	return p, nil
}

func newPublisher(pub msgPublisher, log *logger.Logger) *Publisher {
	return &Publisher{pub: pub, logger: log}
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, "NATSPublisher.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attribute.String("messaging.destination.name", subject)),
	)
	defer span.End()

	body, err := json.Marshal(data)
	if err != nil {
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("marshal event for %s: %w", subject, err)
	}

	msg := &nats.Msg{Subject: subject, Data: body, Header: nats.Header{}}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(msg.Header))

	if err := p.pub.PublishMsg(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("NATSPublisher.Publish: event sent", zap.String("subject", subject), zap.Int("bytes", len(body)))
	return nil
}

// Close flushes pending events before closing the connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("NATSPublisher: drain failed, closing", zap.Error(err))
		p.conn.Close()
	}
}

// headerCarrier adapts nats.Header to the otel TextMapCarrier. nats.Header keys are
// case-sensitive, so keys are stored exactly as the propagator names them.
type headerCarrier nats.Header

func (c headerCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c headerCarrier) Set(key, value string) {
	nats.Header(c).Set(key, value)
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
