package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tommytrillva/midnight-sub001/internal/channel"
)

// HandlerFunc consumes a single event. Handlers must not block for long;
// subscribe with Buffered to move slow work off the publishing goroutine.
type HandlerFunc func(Event)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a subscription.
type Option func(*subConfig)

type subConfig struct {
	bufferSize int
	logged     bool
}

// Buffered moves the handler onto its own worker goroutine fed by a
// channel of the given size. Publish never blocks; events beyond the
// buffer are dropped and counted.
func Buffered(size int) Option {
	return func(c *subConfig) {
		c.bufferSize = size
	}
}

// Logged adds per-delivery debug logging to the handler.
func Logged() Option {
	return func(c *subConfig) {
		c.logged = true
	}
}

// Bus fans telemetry events out to subscribers. The simulation side only
// sees the Publisher interface; consumers subscribe by Kind. Delivery is
// fire-and-forget: a publish to a kind nobody subscribed to is a counted
// no-op, and buffered subscribers drop rather than backpressure.
type Bus struct {
	logger Logger

	queueDepth metric.Int64ObservableGauge
	delivered  metric.Int64Counter
	dropped    metric.Int64Counter
	unrouted   metric.Int64Counter

	mu       sync.RWMutex
	closed   bool
	handlers map[Kind][]HandlerFunc
	buffers  []namedBuffer
	wg       sync.WaitGroup
}

type namedBuffer struct {
	kind Kind
	ch   channel.Channel[Event]
}

var _ Publisher = (*Bus)(nil)

// NewBus creates a Bus with the given logger. Uses the global OTel meter
// for instruments (no-op if not configured).
func NewBus(logger Logger) (*Bus, error) {
	b := &Bus{
		handlers: make(map[Kind][]HandlerFunc),
		logger:   logger,
	}

	m := meter()

	var err error

	b.queueDepth, err = m.Int64ObservableGauge(
		"telemetry.queue.depth",
		metric.WithDescription("Events waiting in buffered subscriptions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue depth gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			b.mu.RLock()
			defer b.mu.RUnlock()
			for _, buf := range b.buffers {
				o.ObserveInt64(b.queueDepth, int64(buf.ch.Len()),
					metric.WithAttributes(attribute.String("kind", string(buf.kind))))
			}
			return nil
		},
		b.queueDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering depth callback: %w", err)
	}

	b.delivered, err = m.Int64Counter(
		"telemetry.events.delivered",
		metric.WithDescription("Total events delivered to subscribers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivered counter: %w", err)
	}

	b.dropped, err = m.Int64Counter(
		"telemetry.events.dropped",
		metric.WithDescription("Total events dropped due to full buffers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	b.unrouted, err = m.Int64Counter(
		"telemetry.events.unrouted",
		metric.WithDescription("Total events published with no subscriber"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unrouted counter: %w", err)
	}

	return b, nil
}

// Subscribe registers a handler for the given kind with optional
// configuration. Multiple handlers per kind are delivered in
// subscription order.
func (b *Bus) Subscribe(kind Kind, h HandlerFunc, opts ...Option) {
	cfg := &subConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = b.withLogging(kind, handler)
	}

	if cfg.bufferSize > 0 {
		handler = b.withBuffer(kind, cfg.bufferSize, handler)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// SubscribeChannel registers a channel-style subscription and returns its
// receive side; audio/VFX consumers range over it. The channel is closed
// when the bus closes.
func (b *Bus) SubscribeChannel(kind Kind, size int) channel.Receiver[Event] {
	ch := channel.New[Event](size)
	kindAttr := attribute.String("kind", string(kind))

	b.mu.Lock()
	b.buffers = append(b.buffers, namedBuffer{kind: kind, ch: ch})
	b.handlers[kind] = append(b.handlers[kind], func(e Event) {
		if ch.TrySend(e) {
			b.delivered.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
		} else {
			b.dropped.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
		}
	})
	b.mu.Unlock()

	return ch
}

// Publish delivers an event to every subscriber of its kind. Never
// blocks on buffered subscribers; synchronous subscribers run inline on
// the publishing goroutine.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	hs := b.handlers[e.Kind]
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return
	}

	if len(hs) == 0 {
		b.unrouted.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("kind", string(e.Kind))))
		return
	}

	for _, h := range hs {
		h(e)
	}
}

// HasSubscriber returns true if at least one handler is registered for
// the kind.
func (b *Bus) HasSubscriber(kind Kind) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind]) > 0
}

// Close stops delivery, closes subscription channels, and waits for
// buffered workers to drain. Publish after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	buffers := b.buffers
	b.buffers = nil
	b.mu.Unlock()

	for _, buf := range buffers {
		buf.ch.Close()
	}
	b.wg.Wait()
}

func (b *Bus) withBuffer(kind Kind, size int, h HandlerFunc) HandlerFunc {
	buf := channel.NewBuffered[Event](size)
	kindAttr := attribute.String("kind", string(kind))

	b.mu.Lock()
	b.buffers = append(b.buffers, namedBuffer{kind: kind, ch: buf})
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for e := range buf.Receive() {
			h(e)
			b.delivered.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
		}
	}()

	return func(e Event) {
		if !buf.TrySend(e) {
			b.dropped.Add(context.Background(), 1, metric.WithAttributes(kindAttr))
		}
	}
}

func (b *Bus) withLogging(kind Kind, h HandlerFunc) HandlerFunc {
	return func(e Event) {
		start := time.Now()
		h(e)
		if b.logger != nil {
			b.logger.Debug("event delivered",
				"kind", string(kind), "vehicle", e.VehicleID, "duration", time.Since(start))
		}
	}
}
