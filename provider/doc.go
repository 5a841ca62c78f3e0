// Package provider is the upstream side of a run: a chat completion backend that
// streams incremental chunks of assistant output.
//
// Design decisions:
//   - Pull based: ChatCompletion returns an iter.Seq2 so the consumer controls the pace
//     and stopping early releases the upstream stream
//   - Normalized wire types: Message and Tool are the OpenAI chat shapes stripped to
//     the fields a run forwards, independent of any SDK
//   - Streaming only: every completion is requested as a stream
//
// Key concepts:
//   - Provider: a backend that can stream a completion
//   - Model: a named model bound to the Provider that serves it
//   - Chunk: one incremental delta, carrying text or tool call fragments
//
// Example usage:
//
//	for chunk, err := range model.Provider().ChatCompletion(ctx, params) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(chunk.Content)
//	}
package provider
