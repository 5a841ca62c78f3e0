package provider

import (
	"context"
	"iter"
)

// Provider defines the interface for chat completion backends.
// ChatCompletion yields chunks in upstream order. An error is yielded at most once and
// ends the sequence. Breaking out of the loop closes the upstream stream.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) iter.Seq2[Chunk, error]
}

// Model is a named model together with the provider that serves it.
type Model interface {
	Name() string
	Provider() Provider
}

// CompletionParams encapsulates everything sent upstream for one streaming completion.
type CompletionParams struct {
	// Model specifies which model to use for this completion
	Model Model

	// Messages is the full conversation, including any prepended context message
	Messages []Message

	// Tools lists the functions the model may call. Empty means no tools are offered.
	Tools []Tool

	// Prevents unkeyed literals
	_ struct{}
}
