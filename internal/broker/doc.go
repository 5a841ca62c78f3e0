// Package broker mirrors AG-UI run events onto a pub/sub topic so that other
// processes can observe runs while they stream to the client.
//
// Design decisions:
//   - Context-first: all operations accept context.Context for cancellation
//   - Topic-based: every run publishes to its own subject, <prefix>.<threadId>.<runId>
//   - Best effort: a publish failure is logged and never affects the run
//   - Two transports: an in-process broker and NATS, with the same semantics
//
// Interface hierarchy:
//   - Broker: Top-level interface for accessing topics
//     └── Topic: Interface for publishing/subscribing to events
//     └── Subscription: Interface for managing subscriptions
//
// Example usage:
//
//	b := broker.NATS(nc)
//	sub, err := b.Topic(ctx, broker.Subject("agui.runs", threadID, runID)).
//	    Subscribe(ctx, func(ctx context.Context, ev events.Event) {
//	        fmt.Println(ev.Type())
//	    })
//	if err != nil {
//	    return err
//	}
//	defer sub.Unsubscribe()
package broker
