// Package protocol holds the request side of the AG-UI protocol: the RunAgentInput
// a client posts to start a run, and the messages, context entries and tool
// specifications it carries.
//
// Decoding is lenient in the places where clients disagree. Message tool call
// metadata is accepted under both the AG-UI camelCase keys (toolCalls, toolCallId)
// and the snake_case keys used by OpenAI-style payloads (tool_calls, tool_call_id),
// and message content may be a plain string or an array of content parts.
package protocol
