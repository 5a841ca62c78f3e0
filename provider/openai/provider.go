package openai

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/casualjim/hoot/provider"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

var _ provider.Provider = (*Provider)(nil)

type Provider struct {
	client *openai.Client
}

func New(options ...option.RequestOption) *Provider {
	client := openai.NewClient(options...)
	return &Provider{
		client: client,
	}
}

func (p *Provider) buildRequest(params *provider.CompletionParams) (openai.ChatCompletionNewParams, error) {
	if params.Model == nil {
		return openai.ChatCompletionNewParams{}, errors.New("model is required")
	}

	msgs, err := messagesToOpenAI(params.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	oaiParams := openai.ChatCompletionNewParams{
		Messages: openai.F(msgs),
		Model:    openai.F(openai.ChatModel(params.Model.Name())),
	}
	if tools := toolsToOpenAI(params.Tools); len(tools) > 0 {
		oaiParams.Tools = openai.F(tools)
	}
	return oaiParams, nil
}

// ChatCompletion streams a completion. Request construction errors and stream errors
// are yielded as the final element.
func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) iter.Seq2[provider.Chunk, error] {
	return func(yield func(provider.Chunk, error) bool) {
		chatParams, err := p.buildRequest(&params)
		if err != nil {
			yield(provider.Chunk{}, fmt.Errorf("failed to build request: %w", err))
			return
		}

		strm := p.client.Chat.Completions.NewStreaming(ctx, chatParams)
		defer strm.Close()

		for strm.Next() {
			chunk := strm.Current()
			if !yield(chunkFromOpenAI(&chunk), nil) {
				return
			}
		}
		if err := strm.Err(); err != nil {
			yield(provider.Chunk{}, err)
		}
	}
}

func messagesToOpenAI(msgs []provider.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for i, msg := range msgs {
		switch msg.Role {
		case provider.RoleSystem, provider.RoleDeveloper:
			result = append(result, openai.SystemMessage(msg.Content))
		case provider.RoleUser:
			result = append(result, openai.UserMessageParts(openai.TextPart(msg.Content)))
		case provider.RoleTool:
			result = append(result, openai.ToolMessage(msg.ToolCallID, msg.Content))
		case provider.RoleAssistant:
			result = append(result, assistantToOpenAI(msg))
		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, msg.Role)
		}
	}
	return result, nil
}

func assistantToOpenAI(msg provider.Message) openai.ChatCompletionAssistantMessageParam {
	am := openai.ChatCompletionAssistantMessageParam{
		Role: openai.F(openai.ChatCompletionAssistantMessageParamRoleAssistant),
	}
	if msg.Content != "" || len(msg.ToolCalls) == 0 {
		am.Content = openai.F([]openai.ChatCompletionAssistantMessageParamContentUnion{
			openai.TextPart(msg.Content),
		})
	}
	if len(msg.ToolCalls) > 0 {
		tcd := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			tcd[i] = openai.ChatCompletionMessageToolCallParam{
				ID:   openai.String(tc.ID),
				Type: openai.F(openai.ChatCompletionMessageToolCallTypeFunction),
				Function: openai.F(openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      openai.String(tc.Name),
					Arguments: openai.String(tc.Arguments),
				}),
			}
		}
		am.ToolCalls = openai.F(tcd)
	}
	return am
}

func toolsToOpenAI(tools []provider.Tool) []openai.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolParam, len(tools))
	for i, tool := range tools {
		def := openai.FunctionDefinitionParam{
			Name: openai.String(tool.Function.Name),
		}
		if strings.TrimSpace(tool.Function.Description) != "" {
			def.Description = openai.String(tool.Function.Description)
		}
		if tool.Function.Parameters != nil {
			def.Parameters = openai.F(shared.FunctionParameters(tool.Function.Parameters))
		}

		result[i] = openai.ChatCompletionToolParam{
			Type:     openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(def),
		}
	}
	return result
}

func chunkFromOpenAI(chunk *openai.ChatCompletionChunk) provider.Chunk {
	if len(chunk.Choices) == 0 {
		return provider.Chunk{}
	}

	delta := chunk.Choices[0].Delta
	result := provider.Chunk{Content: delta.Content}
	if len(delta.ToolCalls) > 0 {
		result.ToolCalls = make([]provider.ToolCallDelta, len(delta.ToolCalls))
		for i, tc := range delta.ToolCalls {
			result.ToolCalls[i] = provider.ToolCallDelta{
				Index:     tc.Index,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
		}
	}
	return result
}
