package events

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Snapshot is the payload of a StateSnapshot. Its keys stay snake_case on the wire.
type Snapshot struct {
	LastResponse string
	// LastToolCall is nil when the model did not request a tool.
	LastToolCall *ToolCallSummary
	Usage        Usage
}

// ToolCallSummary is the name and full argument text of the tool call made during a run.
type ToolCallSummary struct {
	Name      string
	Arguments string
}

// Usage reports token counts. Usage accounting is not implemented, so these are zero.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Map is the snapshot as carried by the STATE_SNAPSHOT event.
func (s Snapshot) Map() map[string]any {
	var toolCall any
	if s.LastToolCall != nil {
		toolCall = map[string]any{
			"name":      s.LastToolCall.Name,
			"arguments": s.LastToolCall.Arguments,
		}
	}
	return map[string]any{
		"last_response":  s.LastResponse,
		"last_tool_call": toolCall,
		"usage": map[string]any{
			"prompt_tokens":     s.Usage.PromptTokens,
			"completion_tokens": s.Usage.CompletionTokens,
			"total_tokens":      s.Usage.TotalTokens,
		},
	}
}

// SnapshotOf reads the snapshot back out of an event, whether it was built in
// process or decoded from the wire.
func SnapshotOf(ev *StateSnapshot) (Snapshot, error) {
	if ev == nil || ev.Snapshot == nil {
		return Snapshot{}, errors.New("missing required field 'snapshot'")
	}

	data, err := json.Marshal(ev.Snapshot)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Snapshot{}, fmt.Errorf("snapshot must be an object: %s", data)
	}

	s := Snapshot{
		LastResponse: root.Get("last_response").String(),
		Usage: Usage{
			PromptTokens:     root.Get("usage.prompt_tokens").Int(),
			CompletionTokens: root.Get("usage.completion_tokens").Int(),
			TotalTokens:      root.Get("usage.total_tokens").Int(),
		},
	}
	if tc := root.Get("last_tool_call"); tc.IsObject() {
		s.LastToolCall = &ToolCallSummary{
			Name:      tc.Get("name").String(),
			Arguments: tc.Get("arguments").String(),
		}
	}
	return s, nil
}
