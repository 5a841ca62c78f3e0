package agent

import (
	"strings"

	"github.com/casualjim/hoot/provider/openai"
	"github.com/fogfish/opts"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig points an agent at an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAI creates an agent backed by an OpenAI-compatible endpoint. The client never
// retries: a failed upstream call is reported in the run itself.
func NewOpenAI(cfg OpenAIConfig, options ...opts.Option[Agent]) (*Agent, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrModelRequired
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}

	all := make([]opts.Option[Agent], 0, len(options)+1)
	all = append(all, WithModel(openai.Model(cfg.Model, clientOpts...)))
	all = append(all, options...)
	return New(all...)
}
