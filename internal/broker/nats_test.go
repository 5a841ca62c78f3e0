package broker

import (
	"context"
	"testing"
	"time"

	"github.com/casualjim/hoot/events"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detachedSubscription() *natsSubscription {
	return &natsSubscription{id: "s1", sub: &nats.Subscription{}, done: make(chan struct{})}
}

func TestNATSSubscription_UnsubscribeStopsWatcher(t *testing.T) {
	sub := detachedSubscription()

	canceled := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		sub.watch(canceled)
		close(returned)
	}()

	sub.Unsubscribe()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("watcher still running after Unsubscribe")
	}

	assert.NotPanics(t, sub.Unsubscribe, "unsubscribing twice")
	close(canceled)
}

func TestNATSSubscription_ContextUnsubscribes(t *testing.T) {
	sub := detachedSubscription()

	canceled := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		sub.watch(canceled)
		close(returned)
	}()

	close(canceled)
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("watcher ignored cancellation")
	}

	select {
	case <-sub.done:
	default:
		t.Fatal("subscription still open after cancellation")
	}
}

func TestNATS_UnsubscribeBeforeCancel(t *testing.T) {
	nc, err := nats.Connect(nats.DefaultURL)
	if err != nil {
		t.Skipf("nats server not reachable at %s: %v", nats.DefaultURL, err)
	}
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := NATS(nc).Topic(ctx, topicName()).Subscribe(ctx, func(context.Context, events.Event) {})
	require.NoError(t, err)

	ns, ok := sub.(*natsSubscription)
	require.True(t, ok)
	sub.Unsubscribe()

	select {
	case <-ns.done:
	default:
		t.Fatal("subscription still open after Unsubscribe")
	}
	assert.False(t, ns.sub.IsValid())
}
