package provider

// Wire roles understood by chat completion backends.
const (
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolTypeFunction is the only tool type chat completion backends accept.
const ToolTypeFunction = "function"

// Message is one chat message in upstream wire form.
type Message struct {
	Role    string
	Content string
	// ToolCalls is only set on assistant messages.
	ToolCalls []ToolCall
	// ToolCallID is only set on tool messages.
	ToolCallID string
}

// ToolCall is a tool invocation previously made by the assistant.
type ToolCall struct {
	ID        string
	Type      string
	Name      string
	Arguments string
}

// Tool is a function definition offered to the model.
type Tool struct {
	Type     string
	Function FunctionDefinition
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string
	Description string
	// Parameters is a decoded JSON schema object, nil when the tool takes no parameters.
	Parameters map[string]any
}
