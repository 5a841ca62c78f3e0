package agent

import (
	"context"
	"log/slog"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/protocol"
)

const errorPrefix = "Error: "

// run drives a single translation.
type run struct {
	agent  *Agent
	ctx    context.Context
	input  protocol.RunAgentInput
	yield  func(events.Event) bool
	logger *slog.Logger

	state   runState
	stopped bool
	emitted int
	err     error
}

// emit hands ev to the consumer. Once the consumer declines an event nothing else is emitted.
func (r *run) emit(ev events.Event) bool {
	if r.stopped {
		return false
	}
	if !r.yield(ev) {
		r.stopped = true
		return false
	}
	r.emitted++
	if obs := r.agent.observer; obs != nil {
		obs.Observe(r.ctx, r.input.ThreadID, r.input.RunID, ev)
	}
	return true
}

func (r *run) execute() {
	r.logger.DebugContext(r.ctx, "run started", slog.String("model", r.agent.model.Name()))
	if !r.emit(events.NewRunStarted(r.input.ThreadID, r.input.RunID)) {
		return
	}

	err := r.stream()
	switch {
	case r.stopped:
		r.logger.DebugContext(r.ctx, "consumer stopped reading", slog.Int("events", r.emitted))
		return
	case err != nil && r.ctx.Err() != nil:
		r.err = err
		r.logger.DebugContext(r.ctx, "run canceled", slogx.Error(err))
		return
	case err != nil:
		r.err = err
		r.logger.WarnContext(r.ctx, "run failed", slogx.Error(err))
		r.fail(err)
	default:
		r.finish()
	}

	if r.emit(events.NewRunFinished(r.input.ThreadID, r.input.RunID)) {
		r.logger.DebugContext(r.ctx, "run finished",
			slog.Int("events", r.emitted),
			slog.Bool("tool_call", r.state.toolCallStarted),
		)
	}
}

// stream pulls the upstream completion and translates each chunk.
// It returns nil when the consumer stops early.
func (r *run) stream() error {
	params, err := r.prepare()
	if err != nil {
		return err
	}

	for chunk, err := range r.agent.model.Provider().ChatCompletion(r.ctx, params) {
		if err != nil {
			return err
		}
		if !r.openText() {
			return nil
		}

		switch {
		case chunk.HasToolCalls():
			// Only the first tool call of a chunk is tracked, later chunks continue it.
			tc := chunk.ToolCalls[0]
			if !r.state.toolCallStarted {
				r.state.toolCallStarted = true
				r.state.toolCallOpen = true
				r.state.toolCallID = r.agent.newID()
				r.state.toolCallName = tc.Name
				if !r.emit(events.NewToolCallStart(r.state.toolCallID, tc.Name)) {
					return nil
				}
			}
			if tc.Arguments != "" {
				r.state.toolCallArgs.WriteString(tc.Arguments)
				if !r.emit(events.NewToolCallArgs(r.state.toolCallID, tc.Arguments)) {
					return nil
				}
			}
		case chunk.Content != "":
			r.state.fullResponse.WriteString(chunk.Content)
			if !r.emit(events.NewTextMessageContent(r.state.messageID, chunk.Content)) {
				return nil
			}
		}
	}
	return nil
}

// openText opens the assistant text bracket the first time it is called.
func (r *run) openText() bool {
	if r.state.textOpen {
		return true
	}
	r.state.messageID = r.agent.newID()
	r.state.textOpen = true
	return r.emit(events.NewTextMessageStart(r.state.messageID))
}

func (r *run) closeBrackets() {
	if r.state.toolCallOpen {
		r.state.toolCallOpen = false
		r.emit(events.NewToolCallEnd(r.state.toolCallID))
	}
	if r.state.textOpen {
		r.state.textOpen = false
		r.emit(events.NewTextMessageEnd(r.state.messageID))
	}
}

func (r *run) finish() {
	if !r.openText() {
		return
	}
	r.closeBrackets()

	snapshot := events.Snapshot{LastResponse: r.state.fullResponse.String()}
	if r.state.toolCallStarted {
		snapshot.LastToolCall = &events.ToolCallSummary{
			Name:      r.state.toolCallName,
			Arguments: r.state.toolCallArgs.String(),
		}
	}
	r.emit(events.NewStateSnapshot(snapshot))
}

func (r *run) fail(err error) {
	r.closeBrackets()

	id := r.agent.newID()
	if !r.emit(events.NewTextMessageStart(id)) {
		return
	}
	if !r.emit(events.NewTextMessageContent(id, errorPrefix+err.Error())) {
		return
	}
	r.emit(events.NewTextMessageEnd(id))
}
