package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/pkg/uuidx"
	"github.com/nats-io/nats.go"
)

type natsBroker struct {
	client *nats.Conn
}

// NATS creates a broker publishing JSON encoded events on a NATS connection.
func NATS(client *nats.Conn) *natsBroker {
	return &natsBroker{client: client}
}

func (b *natsBroker) Topic(_ context.Context, id string) Topic {
	return &natsTopic{
		subject: id,
		client:  b.client,
	}
}

type natsTopic struct {
	client  *nats.Conn
	subject string
}

func (t *natsTopic) Publish(ctx context.Context, event events.Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	eb, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Type(), err)
	}
	return t.client.Publish(t.subject, eb)
}

func (t *natsTopic) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	nsub, err := t.client.Subscribe(t.subject, func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		event, err := events.FromJSON(msg.Data)
		if err != nil {
			slog.Error("failed to unmarshal event", slogx.Error(err), slog.String("subject", msg.Subject), slogx.ByteString("payload", msg.Data))
			return
		}
		handler(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	// make sure the server knows about the subscription before the first publish
	if err := t.client.Flush(); err != nil {
		_ = nsub.Unsubscribe()
		return nil, fmt.Errorf("flush subscription: %w", err)
	}

	sub := &natsSubscription{
		id:   uuidx.NewString(),
		sub:  nsub,
		done: make(chan struct{}),
	}
	if ctxDone := ctx.Done(); ctxDone != nil {
		go sub.watch(ctxDone)
	}
	return sub, nil
}

type natsSubscription struct {
	id        string
	sub       *nats.Subscription
	done      chan struct{}
	closeOnce sync.Once
}

func (n *natsSubscription) ID() string {
	return n.id
}

// watch unsubscribes once canceled is closed. It returns early when the
// subscription is closed explicitly.
func (n *natsSubscription) watch(canceled <-chan struct{}) {
	select {
	case <-canceled:
		n.Unsubscribe()
	case <-n.done:
	}
}

// Unsubscribe is idempotent. It also releases the goroutine watching the subscribe context.
func (n *natsSubscription) Unsubscribe() {
	n.closeOnce.Do(func() {
		close(n.done)
		if err := n.sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrBadSubscription) && !errors.Is(err, nats.ErrConnectionClosed) {
			slog.Error("failed to unsubscribe", slogx.Error(err), slog.String("subscription", n.id))
		}
	})
}

