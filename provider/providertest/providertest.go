// Package providertest provides a scripted provider.Provider for tests.
package providertest

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/casualjim/hoot/provider"
)

// Step is one scripted upstream element: a chunk, or an error that ends the stream.
type Step struct {
	Chunk provider.Chunk
	Err   error
}

// Text scripts one content chunk per part.
func Text(parts ...string) []Step {
	steps := make([]Step, len(parts))
	for i, part := range parts {
		steps[i] = Step{Chunk: provider.Chunk{Content: part}}
	}
	return steps
}

// ToolCall scripts a tool call: the first chunk carries the id and name, every
// argument fragment is its own continuation chunk.
func ToolCall(id, name string, args ...string) []Step {
	steps := []Step{{Chunk: provider.Chunk{ToolCalls: []provider.ToolCallDelta{{ID: id, Name: name}}}}}
	for _, arg := range args {
		steps = append(steps, Step{Chunk: provider.Chunk{ToolCalls: []provider.ToolCallDelta{{Arguments: arg}}}})
	}
	return steps
}

// Fail scripts a stream error.
func Fail(err error) Step {
	return Step{Err: err}
}

// Script concatenates groups of steps.
func Script(groups ...[]Step) []Step {
	return slices.Concat(groups...)
}

// Provider replays the same script for every completion request and records the
// requests it received.
type Provider struct {
	steps []Step

	mu     sync.Mutex
	calls  []provider.CompletionParams
	pulled int
	closed int
}

var _ provider.Provider = (*Provider)(nil)

// New creates a provider that replays steps.
func New(steps ...Step) *Provider {
	return &Provider{steps: steps}
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) iter.Seq2[provider.Chunk, error] {
	p.mu.Lock()
	p.calls = append(p.calls, params)
	p.mu.Unlock()

	return func(yield func(provider.Chunk, error) bool) {
		defer func() {
			p.mu.Lock()
			p.closed++
			p.mu.Unlock()
		}()

		for _, step := range p.steps {
			if err := ctx.Err(); err != nil {
				yield(provider.Chunk{}, err)
				return
			}
			if step.Err != nil {
				yield(provider.Chunk{}, step.Err)
				return
			}

			p.mu.Lock()
			p.pulled++
			p.mu.Unlock()

			if !yield(step.Chunk, nil) {
				return
			}
		}
	}
}

// Calls returns the completion requests received so far.
func (p *Provider) Calls() []provider.CompletionParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}

// Pulled is the number of chunks handed to consumers.
func (p *Provider) Pulled() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pulled
}

// Closed is the number of streams that have been released.
func (p *Provider) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Model binds the provider to a model name.
func (p *Provider) Model(name string) provider.Model {
	return model{name: name, prov: p}
}

type model struct {
	name string
	prov provider.Provider
}

func (m model) Name() string                { return m.name }
func (m model) Provider() provider.Provider { return m.prov }
