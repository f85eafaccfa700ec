package hostmsg

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus delivers events for a session to whoever embeds it.
type Bus interface {
	Publish(ctx context.Context, sessionID uuid.UUID, ev Event) error
}

// Notifier is a Bus bound to one session. Delivery failures never fail the
// operation that raised the event.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type boundNotifier struct {
	bus       Bus
	sessionID uuid.UUID
	logger    *zap.Logger
}

// Bind returns a Notifier publishing to bus under sessionID. Publish errors
// are logged and dropped.
func Bind(bus Bus, sessionID uuid.UUID, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &boundNotifier{bus: bus, sessionID: sessionID, logger: logger}
}

func (n *boundNotifier) Notify(ctx context.Context, ev Event) {
	if n.bus == nil {
		return
	}
	if err := n.bus.Publish(ctx, n.sessionID, ev); err != nil {
		n.logger.Warn("publish host event",
			zap.String("event", ev.Name),
			zap.String("session_id", n.sessionID.String()),
			zap.Error(err))
	}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) { f(ctx, ev) }

// Discard drops every event.
var Discard Notifier = NotifierFunc(func(context.Context, Event) {})

// Fanout publishes to every bus and joins their errors.
type Fanout []Bus

func (f Fanout) Publish(ctx context.Context, sessionID uuid.UUID, ev Event) error {
	var errs []error
	for _, b := range f {
		if b == nil {
			continue
		}
		if err := b.Publish(ctx, sessionID, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broker fans events out to in-process subscribers, one buffered channel
// each. A subscriber that falls behind loses events rather than blocking the
// publisher.
type Broker struct {
	buffer int

	mu   sync.Mutex
	subs map[uuid.UUID]map[chan Event]struct{}
}

// NewBroker creates a Broker whose subscriber channels hold buffer events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{buffer: buffer, subs: make(map[uuid.UUID]map[chan Event]struct{})}
}

// ErrSlowSubscriber is returned by Publish when at least one subscriber's
// buffer was full.
var ErrSlowSubscriber = errors.New("hostmsg: subscriber buffer full, event dropped")

func (b *Broker) Publish(_ context.Context, sessionID uuid.UUID, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var dropped bool
	for ch := range b.subs[sessionID] {
		select {
		case ch <- ev:
		default:
			dropped = true
		}
	}
	if dropped {
		return ErrSlowSubscriber
	}
	return nil
}

// Subscribe registers a listener for sessionID. The returned cancel function
// unregisters it and closes the channel.
func (b *Broker) Subscribe(sessionID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}
