package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk_HasToolCalls(t *testing.T) {
	assert.False(t, Chunk{}.HasToolCalls())
	assert.False(t, Chunk{Content: "hi"}.HasToolCalls())
	assert.True(t, Chunk{ToolCalls: []ToolCallDelta{{Name: "f"}}}.HasToolCalls())
}
