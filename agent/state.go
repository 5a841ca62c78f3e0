package agent

import "strings"

// runState is the translation state of one run. It never outlives the Run call.
type runState struct {
	messageID    string
	textOpen     bool
	fullResponse strings.Builder

	toolCallStarted bool
	toolCallOpen    bool
	toolCallID      string
	toolCallName    string
	toolCallArgs    strings.Builder
}
