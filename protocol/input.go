package protocol

import (
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrInvalidInput is returned when a RunAgentInput cannot start a run.
var ErrInvalidInput = errors.New("invalid run input")

// RunAgentInput is the body of one run request. It is treated as immutable for
// the duration of the run.
type RunAgentInput struct {
	ThreadID       string          `json:"threadId"`
	RunID          string          `json:"runId"`
	Messages       []Message       `json:"messages"`
	Context        []Context       `json:"context"`
	Tools          []Tool          `json:"tools"`
	State          json.RawMessage `json:"state,omitempty"`
	ForwardedProps json.RawMessage `json:"forwardedProps,omitempty"`
}

// Context is one piece of caller supplied context, rendered into a system message.
type Context struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// Tool describes a function the model may ask the client to call.
// Parameters is a JSON schema document and is forwarded as is.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Decode reads exactly one RunAgentInput JSON document from r.
func Decode(r io.Reader) (RunAgentInput, error) {
	var input RunAgentInput

	dec := json.NewDecoder(r)
	if err := dec.Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return RunAgentInput{}, fmt.Errorf("%w: request body is required", ErrInvalidInput)
		}
		return RunAgentInput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if dec.More() {
		return RunAgentInput{}, fmt.Errorf("%w: body must contain exactly one JSON object", ErrInvalidInput)
	}
	return input, nil
}

// Validate checks the fields a run cannot do without.
func (in RunAgentInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.ThreadID) == "" {
		problems = append(problems, "threadId is required")
	}
	if strings.TrimSpace(in.RunID) == "" {
		problems = append(problems, "runId is required")
	}
	for i, tool := range in.Tools {
		if strings.TrimSpace(tool.Name) == "" {
			problems = append(problems, fmt.Sprintf("tools[%d].name is required", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
