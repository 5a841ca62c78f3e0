// Package events defines the AG-UI lifecycle events emitted for a single agent run.
//
// The events are the AG-UI Go SDK types (github.com/ag-ui-protocol/ag-ui/sdks/community/go),
// re-exported under short names together with constructors that fix the choices a
// run makes: text messages always open with the assistant role and the state
// snapshot always carries last_response, last_tool_call and usage.
//
// Every event serializes to a flat JSON object whose "type" member carries the AG-UI
// event type name (RUN_STARTED, TEXT_MESSAGE_CONTENT, ...), with the remaining fields
// in camelCase. STATE_SNAPSHOT is the exception: its snapshot payload keeps the
// snake_case keys clients already consume.
//
// Example:
//
//	for ev := range agent.Run(ctx, input) {
//	    switch e := ev.(type) {
//	    case *events.TextMessageContent:
//	        fmt.Print(e.Delta)
//	    case *events.ToolCallStart:
//	        fmt.Println("calling", e.ToolCallName)
//	    }
//	}
package events
