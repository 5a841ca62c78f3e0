package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/pkg/uuidx"
)

const (
	defaultSlowSubscriberTimeout = 100 * time.Millisecond
	subscriptionBuffer           = 64
)

type localBroker struct {
	mu                    sync.Mutex
	topics                *haxmap.Map[string, *topic]
	slowSubscriberTimeout time.Duration
}

// Local creates an in-process broker.
func Local() *localBroker {
	return &localBroker{
		topics:                haxmap.New[string, *topic](),
		slowSubscriberTimeout: defaultSlowSubscriberTimeout,
	}
}

// WithSlowSubscriberTimeout configures how long a publish waits on a full subscriber
// before dropping it. A zero timeout keeps the default.
func (b *localBroker) WithSlowSubscriberTimeout(timeout time.Duration) *localBroker {
	if timeout > 0 {
		b.slowSubscriberTimeout = timeout
	}
	return b
}

// Topic returns a handle for id. Topics only hold state while they have subscribers,
// publishing to a topic nobody listens on is a no-op.
func (b *localBroker) Topic(_ context.Context, id string) Topic {
	return &localTopic{broker: b, id: id}
}

func (b *localBroker) release(t *topic, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.subscriptions.Del(subID)
	if t.subscriptions.Len() == 0 {
		b.topics.Del(t.ID)
	}
}

type localTopic struct {
	broker *localBroker
	id     string
}

func (l *localTopic) Publish(ctx context.Context, event events.Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	t, ok := l.broker.topics.Get(l.id)
	if !ok {
		return ctx.Err()
	}
	return t.publish(ctx, event)
}

func (l *localTopic) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	b := l.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	t, _ := b.topics.GetOrCompute(l.id, func() *topic {
		return &topic{
			ID:                    l.id,
			subscriptions:         haxmap.New[string, *subscription](),
			slowSubscriberTimeout: b.slowSubscriberTimeout,
		}
	})
	return t.subscribe(ctx, handler, func(subID string) { b.release(t, subID) }), nil
}

type topic struct {
	ID                    string
	subscriptions         *haxmap.Map[string, *subscription]
	slowSubscriberTimeout time.Duration
}

func (t *topic) publish(ctx context.Context, event events.Event) error {
	t.subscriptions.ForEach(func(id string, sub *subscription) bool {
		if sub == nil {
			return true
		}

		// Check if subscription is still active
		select {
		case <-ctx.Done():
			return false
		case <-sub.ctx.Done():
			sub.Unsubscribe()
			return true
		case <-sub.done:
			return true
		default:
		}

		select {
		case <-ctx.Done():
			return false
		case <-sub.ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		case sub.channel <- event:
		case <-time.After(t.slowSubscriberTimeout):
			// Channel is full after timeout, unsubscribe
			sub.Unsubscribe()
		}
		return true
	})
	return ctx.Err()
}

func (t *topic) subscribe(ctx context.Context, handler Handler, release func(string)) *subscription {
	id := uuidx.NewString()
	sub := &subscription{
		id:      id,
		ctx:     ctx,
		channel: make(chan events.Event, subscriptionBuffer),
		done:    make(chan struct{}),
		onClose: func() { release(id) },
		handler: handler,
	}
	t.subscriptions.Set(id, sub)
	go sub.forward()
	return sub
}

type subscription struct {
	id        string
	ctx       context.Context
	channel   chan events.Event
	done      chan struct{}
	closeOnce sync.Once
	onClose   func()
	handler   Handler
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) Unsubscribe() {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
		close(s.done)
	})
}

func (s *subscription) forward() {
	for {
		select {
		case event := <-s.channel:
			s.handler(s.ctx, event)
		case <-s.done:
			return
		case <-s.ctx.Done():
			return
		}
	}
}
