package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/casualjim/hoot/provider"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.NotNil(t, p.client)
}

func TestModel_LazyProvider(t *testing.T) {
	m := Model("qwen-max-latest", option.WithAPIKey("test"))
	assert.Equal(t, "qwen-max-latest", m.Name())

	first := m.Provider()
	require.NotNil(t, first)
	assert.Same(t, first, m.Provider())
}

func TestProvider_buildRequest(t *testing.T) {
	p := New()
	params := &provider.CompletionParams{
		Model: Model("test-model"),
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: "context"},
			{Role: provider.RoleUser, Content: "Hello"},
			{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{{
				ID: "call_1", Type: provider.ToolTypeFunction, Name: "get_weather", Arguments: `{"city":"Paris"}`,
			}}},
			{Role: provider.RoleTool, Content: "sunny", ToolCallID: "call_1"},
			{Role: provider.RoleAssistant, Content: "It is sunny"},
		},
		Tools: []provider.Tool{{
			Type: provider.ToolTypeFunction,
			Function: provider.FunctionDefinition{
				Name:        "get_weather",
				Description: "Look up the weather",
				Parameters:  map[string]any{"type": "object"},
			},
		}},
	}

	chatParams, err := p.buildRequest(params)
	require.NoError(t, err)

	assert.Equal(t, "test-model", string(chatParams.Model.Value))

	msgs := chatParams.Messages.Value
	require.Len(t, msgs, 5)

	systemMsg := msgs[0].(openai.ChatCompletionSystemMessageParam)
	assert.Equal(t, "context", systemMsg.Content.Value[0].Text.Value)

	userMsg := msgs[1].(openai.ChatCompletionUserMessageParam)
	assert.Equal(t, "Hello", userMsg.Content.Value[0].(openai.ChatCompletionContentPartTextParam).Text.Value)

	toolCallMsg := msgs[2].(openai.ChatCompletionAssistantMessageParam)
	require.Len(t, toolCallMsg.ToolCalls.Value, 1)
	assert.Equal(t, "call_1", toolCallMsg.ToolCalls.Value[0].ID.Value)
	assert.Equal(t, "get_weather", toolCallMsg.ToolCalls.Value[0].Function.Value.Name.Value)
	assert.Equal(t, `{"city":"Paris"}`, toolCallMsg.ToolCalls.Value[0].Function.Value.Arguments.Value)
	assert.Empty(t, toolCallMsg.Content.Value)

	toolMsg := msgs[3].(openai.ChatCompletionToolMessageParam)
	assert.Equal(t, "call_1", toolMsg.ToolCallID.Value)

	assistantMsg := msgs[4].(openai.ChatCompletionAssistantMessageParam)
	require.Len(t, assistantMsg.Content.Value, 1)
	assert.Empty(t, assistantMsg.ToolCalls.Value)

	tools := chatParams.Tools.Value
	require.Len(t, tools, 1)
	assert.Equal(t, openai.ChatCompletionToolTypeFunction, tools[0].Type.Value)
	assert.Equal(t, "get_weather", tools[0].Function.Value.Name.Value)
	assert.Equal(t, "Look up the weather", tools[0].Function.Value.Description.Value)
	assert.NotNil(t, tools[0].Function.Value.Parameters.Value)
}

func TestProvider_buildRequest_Errors(t *testing.T) {
	p := New()

	_, err := p.buildRequest(&provider.CompletionParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")

	_, err = p.buildRequest(&provider.CompletionParams{
		Model:    Model("test-model"),
		Messages: []provider.Message{{Role: "narrator", Content: "once upon a time"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported role "narrator"`)
}

func TestChunkFromOpenAI(t *testing.T) {
	tests := []struct {
		name  string
		chunk openai.ChatCompletionChunk
		want  provider.Chunk
	}{
		{
			name:  "no choices",
			chunk: openai.ChatCompletionChunk{},
			want:  provider.Chunk{},
		},
		{
			name: "content",
			chunk: openai.ChatCompletionChunk{
				Choices: []openai.ChatCompletionChunkChoice{{
					Delta: openai.ChatCompletionChunkChoicesDelta{Content: "Hello"},
				}},
			},
			want: provider.Chunk{Content: "Hello"},
		},
		{
			name: "tool call",
			chunk: openai.ChatCompletionChunk{
				Choices: []openai.ChatCompletionChunkChoice{{
					Delta: openai.ChatCompletionChunkChoicesDelta{
						ToolCalls: []openai.ChatCompletionChunkChoicesDeltaToolCall{{
							Index: 0,
							ID:    "call_1",
							Function: openai.ChatCompletionChunkChoicesDeltaToolCallsFunction{
								Name:      "get_weather",
								Arguments: `{"city":`,
							},
						}},
					},
				}},
			},
			want: provider.Chunk{ToolCalls: []provider.ToolCallDelta{{
				ID: "call_1", Name: "get_weather", Arguments: `{"city":`,
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunkFromOpenAI(&tt.chunk))
		})
	}
}

func setupTestServer(t *testing.T, handler http.HandlerFunc) *Provider {
	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
	})

	p := New(
		option.WithBaseURL(server.URL+"/v1"),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	return p
}

func writeChunks(t *testing.T, w http.ResponseWriter, chunks ...openai.ChatCompletionChunk) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	require.True(t, ok)

	for _, chunk := range chunks {
		data, err := json.Marshal(chunk)
		require.NoError(t, err)
		_, err = fmt.Fprintf(w, "data: %s\n\n", data)
		require.NoError(t, err)
		flusher.Flush()
	}
}

func textChunk(content string) openai.ChatCompletionChunk {
	return openai.ChatCompletionChunk{
		ID: "chatcmpl-1",
		Choices: []openai.ChatCompletionChunkChoice{{
			Delta: openai.ChatCompletionChunkChoicesDelta{Content: content},
		}},
	}
}

func TestProvider_ChatCompletion_Stream(t *testing.T) {
	bodies := make(chan []byte, 1)
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies <- body

		writeChunks(t, w,
			textChunk("Hel"),
			textChunk("lo"),
			openai.ChatCompletionChunk{
				ID: "chatcmpl-1",
				Choices: []openai.ChatCompletionChunkChoice{{
					Delta: openai.ChatCompletionChunkChoicesDelta{
						ToolCalls: []openai.ChatCompletionChunkChoicesDeltaToolCall{{
							ID: "call_1",
							Function: openai.ChatCompletionChunkChoicesDeltaToolCallsFunction{
								Name:      "get_weather",
								Arguments: `{}`,
							},
						}},
					},
				}},
			},
		)
		_, err = fmt.Fprintf(w, "data: [DONE]\n\n")
		require.NoError(t, err)
	})

	params := provider.CompletionParams{
		Model:    Model("test-model"),
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "Hi"}},
	}

	var chunks []provider.Chunk //nolint:prealloc
	for chunk, err := range p.ChatCompletion(context.Background(), params) {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 3)
	assert.Equal(t, "Hel", chunks[0].Content)
	assert.Equal(t, "lo", chunks[1].Content)
	require.True(t, chunks[2].HasToolCalls())
	assert.Equal(t, "get_weather", chunks[2].ToolCalls[0].Name)

	req := gjson.ParseBytes(<-bodies)
	assert.Equal(t, "test-model", req.Get("model").String())
	assert.True(t, req.Get("stream").Bool())
	assert.Equal(t, "user", req.Get("messages.0.role").String())
	assert.False(t, req.Get("tools").Exists(), "an empty tool list is not sent")
}

func TestProvider_ChatCompletion_UpstreamError(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	var (
		chunks int
		errs   []error
	)
	for _, err := range p.ChatCompletion(context.Background(), provider.CompletionParams{Model: Model("test-model")}) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		chunks++
	}

	assert.Zero(t, chunks)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "500")
}

func TestProvider_ChatCompletion_BuildError(t *testing.T) {
	p := New()

	var errs []error
	for _, err := range p.ChatCompletion(context.Background(), provider.CompletionParams{}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "failed to build request")
}

func TestProvider_ChatCompletion_EarlyStop(t *testing.T) {
	serverDone := make(chan struct{})
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		defer close(serverDone)
		writeChunks(t, w, textChunk("first"))

		// The client closes the stream once the consumer stops pulling.
		<-r.Context().Done()
	})

	var got []string
	for chunk, err := range p.ChatCompletion(context.Background(), provider.CompletionParams{Model: Model("test-model")}) {
		require.NoError(t, err)
		got = append(got, chunk.Content)
		break
	}

	<-serverDone
	assert.Equal(t, []string{"first"}, got)
}
