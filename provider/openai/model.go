package openai

import (
	"sync"

	"github.com/casualjim/hoot/provider"
	"github.com/openai/openai-go/option"
)

// Model binds a model name to a lazily created provider using the given client options.
func Model(name string, opts ...option.RequestOption) provider.Model {
	return &model{
		name: name,
		opts: opts,
	}
}

var _ provider.Model = (*model)(nil)

type model struct {
	name string
	opts []option.RequestOption

	prov     provider.Provider
	provOnce sync.Once
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Provider() provider.Provider {
	m.provOnce.Do(func() {
		m.prov = New(m.opts...)
	})
	return m.prov
}
