// Package agent translates one streaming chat completion into the ordered AG-UI
// event sequence of a run.
//
// A run always starts with RUN_STARTED and ends with RUN_FINISHED. On success the
// assistant output is wrapped in a single text message bracket, an optional tool call
// bracket is nested inside it, and a STATE_SNAPSHOT summarizing the run precedes
// RUN_FINISHED. When anything fails, brackets that are still open are closed, the
// error is reported in a separate text message starting with "Error: ", and no
// snapshot is sent.
//
// Run is pull based: events are produced only as fast as the consumer reads them, and
// a consumer that stops iterating releases the upstream stream.
//
// Example:
//
//	a, err := agent.New(agent.WithModel(openai.Model("qwen-max-latest", opts...)))
//	if err != nil {
//	    return err
//	}
//	for ev := range a.Run(ctx, input) {
//	    // forward ev
//	}
package agent
