package events

import (
	agui "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
)

// Event is one AG-UI lifecycle event.
type Event = agui.Event

// EventType is the AG-UI name of an event, used as the "type" member on the wire.
type EventType = agui.EventType

const (
	TypeRunStarted         = agui.EventTypeRunStarted
	TypeRunFinished        = agui.EventTypeRunFinished
	TypeTextMessageStart   = agui.EventTypeTextMessageStart
	TypeTextMessageContent = agui.EventTypeTextMessageContent
	TypeTextMessageEnd     = agui.EventTypeTextMessageEnd
	TypeToolCallStart      = agui.EventTypeToolCallStart
	TypeToolCallArgs       = agui.EventTypeToolCallArgs
	TypeToolCallEnd        = agui.EventTypeToolCallEnd
	TypeStateSnapshot      = agui.EventTypeStateSnapshot
)

// RoleAssistant is the only role the translator opens text messages with.
const RoleAssistant = "assistant"

// The event variants a run emits. They are the SDK types, so anything built on
// the AG-UI Go SDK can consume them directly.
type (
	RunStarted         = agui.RunStartedEvent
	RunFinished        = agui.RunFinishedEvent
	TextMessageStart   = agui.TextMessageStartEvent
	TextMessageContent = agui.TextMessageContentEvent
	TextMessageEnd     = agui.TextMessageEndEvent
	ToolCallStart      = agui.ToolCallStartEvent
	ToolCallArgs       = agui.ToolCallArgsEvent
	ToolCallEnd        = agui.ToolCallEndEvent
	StateSnapshot      = agui.StateSnapshotEvent
)

// NewRunStarted opens a run. It is always the first event.
func NewRunStarted(threadID, runID string) *RunStarted {
	return agui.NewRunStartedEvent(threadID, runID)
}

// NewRunFinished closes a run. It is always the last event, on success and on failure.
func NewRunFinished(threadID, runID string) *RunFinished {
	return agui.NewRunFinishedEvent(threadID, runID)
}

// NewTextMessageStart opens an assistant text message bracket.
func NewTextMessageStart(messageID string) *TextMessageStart {
	return agui.NewTextMessageStartEvent(messageID, agui.WithRole(RoleAssistant))
}

func NewTextMessageContent(messageID, delta string) *TextMessageContent {
	return agui.NewTextMessageContentEvent(messageID, delta)
}

func NewTextMessageEnd(messageID string) *TextMessageEnd {
	return agui.NewTextMessageEndEvent(messageID)
}

// NewToolCallStart announces that the model wants a tool invoked. The name may be
// empty when the upstream never sent one.
func NewToolCallStart(toolCallID, name string) *ToolCallStart {
	return agui.NewToolCallStartEvent(toolCallID, name)
}

func NewToolCallArgs(toolCallID, delta string) *ToolCallArgs {
	return agui.NewToolCallArgsEvent(toolCallID, delta)
}

func NewToolCallEnd(toolCallID string) *ToolCallEnd {
	return agui.NewToolCallEndEvent(toolCallID)
}

// NewStateSnapshot reports the accumulated outcome of a successful run.
func NewStateSnapshot(s Snapshot) *StateSnapshot {
	return agui.NewStateSnapshotEvent(s.Map())
}

