package broker

import (
	"context"
	"testing"
	"time"

	"github.com/casualjim/hoot/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PublishWithoutSubscribers(t *testing.T) {
	b := Local()
	topic := b.Topic(context.Background(), "nobody.listens")

	require.NoError(t, topic.Publish(context.Background(), content(1)))
	assert.Equal(t, uintptr(0), b.topics.Len())
}

func TestLocal_ReleasesEmptyTopics(t *testing.T) {
	b := Local()
	topic := b.Topic(context.Background(), "runs.t1.r1")

	sub1, err := topic.Subscribe(context.Background(), func(context.Context, events.Event) {})
	require.NoError(t, err)
	sub2, err := topic.Subscribe(context.Background(), func(context.Context, events.Event) {})
	require.NoError(t, err)
	assert.Equal(t, uintptr(1), b.topics.Len())

	sub1.Unsubscribe()
	assert.Equal(t, uintptr(1), b.topics.Len())
	sub2.Unsubscribe()
	assert.Equal(t, uintptr(0), b.topics.Len())
}

func TestLocal_SlowSubscriberTimeout(t *testing.T) {
	assert.Equal(t, defaultSlowSubscriberTimeout, Local().slowSubscriberTimeout)
	assert.Equal(t, defaultSlowSubscriberTimeout, Local().WithSlowSubscriberTimeout(0).slowSubscriberTimeout)
	assert.Equal(t, time.Second, Local().WithSlowSubscriberTimeout(time.Second).slowSubscriberTimeout)
}

func TestLocal_DropsStuckSubscriber(t *testing.T) {
	b := Local().WithSlowSubscriberTimeout(5 * time.Millisecond)
	topic := b.Topic(context.Background(), "runs.t1.r1")

	block := make(chan struct{})
	rec := &recorder{}
	sub, err := topic.Subscribe(context.Background(), func(ctx context.Context, ev events.Event) {
		<-block
		rec.handle(ctx, ev)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// one event in the handler plus a full buffer, the next publish times out
	total := subscriptionBuffer + 10
	start := time.Now()
	for i := range total {
		require.NoError(t, topic.Publish(context.Background(), content(i)))
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, uintptr(0), b.topics.Len())

	close(block)
	time.Sleep(50 * time.Millisecond)
	assert.Less(t, len(rec.received()), total)
}

func TestLocal_PublishHonoursContext(t *testing.T) {
	b := Local()
	topic := b.Topic(context.Background(), "runs.t1.r1")
	sub, err := topic.Subscribe(context.Background(), func(context.Context, events.Event) {})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, topic.Publish(ctx, content(1)), context.Canceled)
}
