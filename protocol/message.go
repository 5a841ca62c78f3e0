package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallTypeFunction is the only tool call type the protocol defines.
const ToolCallTypeFunction = "function"

// Message is one entry of the conversation history sent with a run.
// ToolCalls is only meaningful for assistant messages, ToolCallID only for tool messages.
type Message struct {
	ID         string     `json:"id,omitempty"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
}

// ToolCall is a tool invocation previously requested by the assistant.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its JSON encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// UnmarshalJSON implements lenient decoding for Message.
func (m *Message) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}
	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		return nil
	}
	if !root.IsObject() {
		return errors.New("message must be a JSON object")
	}

	msg := Message{
		ID:         root.Get("id").String(),
		Role:       Role(root.Get("role").String()),
		Name:       root.Get("name").String(),
		Content:    contentText(root.Get("content")),
		ToolCallID: firstOf(root, "toolCallId", "tool_call_id").String(),
	}

	if calls := firstOf(root, "toolCalls", "tool_calls"); calls.IsArray() {
		for _, call := range calls.Array() {
			tc := ToolCall{
				ID:   call.Get("id").String(),
				Type: call.Get("type").String(),
				Function: FunctionCall{
					Name:      call.Get("function.name").String(),
					Arguments: argumentsText(call.Get("function.arguments")),
				},
			}
			if tc.Type == "" {
				tc.Type = ToolCallTypeFunction
			}
			msg.ToolCalls = append(msg.ToolCalls, tc)
		}
	}

	*m = msg
	return nil
}

type field struct {
	path  string
	value any
}

// MarshalJSON writes the camelCase wire shape. Tool calls are only written for
// assistant messages and the tool call id only for tool messages.
func (m Message) MarshalJSON() ([]byte, error) {
	var fields []field
	if m.ID != "" {
		fields = append(fields, field{"id", m.ID})
	}
	fields = append(fields, field{"role", string(m.Role)}, field{"content", m.Content})
	if m.Name != "" {
		fields = append(fields, field{"name", m.Name})
	}
	if m.Role == RoleAssistant {
		for i, tc := range m.ToolCalls {
			typ := tc.Type
			if typ == "" {
				typ = ToolCallTypeFunction
			}
			prefix := fmt.Sprintf("toolCalls.%d.", i)
			fields = append(fields,
				field{prefix + "id", tc.ID},
				field{prefix + "type", typ},
				field{prefix + "function.name", tc.Function.Name},
				field{prefix + "function.arguments", tc.Function.Arguments},
			)
		}
	}
	if m.Role == RoleTool && m.ToolCallID != "" {
		fields = append(fields, field{"toolCallId", m.ToolCallID})
	}

	result := []byte(`{}`)
	var err error
	for _, f := range fields {
		if result, err = sjson.SetBytes(result, f.path, f.value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", f.path, err)
		}
	}
	return result, nil
}

func firstOf(root gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := root.Get(key); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// contentText flattens string content or an array of content parts into text.
func contentText(v gjson.Result) string {
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return ""
	case v.Type == gjson.String:
		return v.Str
	case v.IsArray():
		var sb strings.Builder
		for _, part := range v.Array() {
			if part.Type == gjson.String {
				sb.WriteString(part.Str)
				continue
			}
			if t := part.Get("type").String(); t == "" || t == "text" {
				sb.WriteString(part.Get("text").String())
			}
		}
		return sb.String()
	default:
		return v.Raw
	}
}

// argumentsText keeps string arguments verbatim and re-serializes object arguments.
func argumentsText(v gjson.Result) string {
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return ""
	case v.Type == gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}
