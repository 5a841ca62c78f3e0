package broker

import (
	"context"
	"strings"

	"github.com/casualjim/hoot/events"
)

// Handler receives events delivered to a subscription, one at a time.
type Handler func(context.Context, events.Event)

type Broker interface {
	Topic(context.Context, string) Topic
}

type Topic interface {
	Publish(context.Context, events.Event) error
	Subscribe(context.Context, Handler) (Subscription, error)
}

type Subscription interface {
	ID() string
	Unsubscribe()
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_", "\n", "_", "\r", "_")

// Subject builds the per run subject. Characters with a meaning in NATS subjects are
// replaced in the thread and run ids.
func Subject(prefix, threadID, runID string) string {
	return prefix + "." + token(threadID) + "." + token(runID)
}

func token(s string) string {
	if s == "" {
		return "_"
	}
	return subjectReplacer.Replace(s)
}
