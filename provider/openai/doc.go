/*
Package openai implements provider.Provider on top of the official openai-go SDK.
It works against any OpenAI-compatible chat completion endpoint, such as DashScope's
compatible mode, by pointing the client at a different base URL.

# Design Decisions

  - Streaming only: every request goes through Chat.Completions.NewStreaming
  - Pull based: the returned sequence reads the SSE stream lazily and closes it when
    the consumer stops
  - Lazy initialization: models build their provider on first use
  - No hidden retries: callers that want retries say so with option.WithMaxRetries

# Models

	model := openai.Model("qwen-max-latest",
		option.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
		option.WithBaseURL("https://dashscope.aliyuncs.com/compatible-mode/v1"),
		option.WithMaxRetries(0),
	)

# Message Handling

Normalized provider messages map onto the SDK's message params:

  - system and developer messages become system messages
  - user messages become single text part user messages
  - assistant messages carry their text and any previous tool calls
  - tool messages carry the tool call id they answer

Only the first choice of each streamed chunk is used.
*/
package openai
