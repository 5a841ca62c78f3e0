package provider

// Chunk is one streamed delta of the first completion choice.
type Chunk struct {
	Content   string
	ToolCalls []ToolCallDelta
}

// ToolCallDelta is an incremental fragment of a tool call.
// Index identifies which call the fragment belongs to when a model streams several.
type ToolCallDelta struct {
	Index     int64
	ID        string
	Name      string
	Arguments string
}

// HasToolCalls reports whether the chunk carries tool call data.
func (c Chunk) HasToolCalls() bool {
	return len(c.ToolCalls) > 0
}
