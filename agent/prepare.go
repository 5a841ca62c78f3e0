package agent

import (
	"fmt"
	"strings"

	"github.com/casualjim/hoot/pkg/jsonx"
	"github.com/casualjim/hoot/protocol"
	"github.com/casualjim/hoot/provider"
)

// contextPreamble heads the synthetic context message, one "- description: value"
// line per entry follows it.
const contextPreamble = "以下是当前对话的上下文信息：\n"

func (r *run) prepare() (provider.CompletionParams, error) {
	tools, err := toolsToProvider(r.input.Tools)
	if err != nil {
		return provider.CompletionParams{}, err
	}

	return provider.CompletionParams{
		Model:    r.agent.model,
		Messages: messagesToProvider(r.input.Messages, r.input.Context),
		Tools:    tools,
	}, nil
}

// messagesToProvider normalizes the conversation. A non-empty context list becomes a
// system message that always goes first.
func messagesToProvider(msgs []protocol.Message, ctxs []protocol.Context) []provider.Message {
	result := make([]provider.Message, 0, len(msgs)+1)
	if len(ctxs) > 0 {
		result = append(result, contextMessage(ctxs))
	}

	for _, msg := range msgs {
		pm := provider.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		switch msg.Role {
		case protocol.RoleAssistant:
			for _, tc := range msg.ToolCalls {
				typ := tc.Type
				if typ == "" {
					typ = provider.ToolTypeFunction
				}
				pm.ToolCalls = append(pm.ToolCalls, provider.ToolCall{
					ID:        tc.ID,
					Type:      typ,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}
		case protocol.RoleTool:
			pm.ToolCallID = msg.ToolCallID
		}
		result = append(result, pm)
	}
	return result
}

func contextMessage(ctxs []protocol.Context) provider.Message {
	var sb strings.Builder
	sb.WriteString(contextPreamble)
	for _, c := range ctxs {
		fmt.Fprintf(&sb, "- %s: %s\n", c.Description, c.Value)
	}
	return provider.Message{Role: provider.RoleSystem, Content: sb.String()}
}

func toolsToProvider(tools []protocol.Tool) ([]provider.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	result := make([]provider.Tool, len(tools))
	for i, tool := range tools {
		params, err := jsonx.ObjectFromRaw(tool.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %q: invalid parameters schema: %w", tool.Name, err)
		}
		result[i] = provider.Tool{
			Type: provider.ToolTypeFunction,
			Function: provider.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		}
	}
	return result, nil
}
