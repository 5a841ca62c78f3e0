package broker

import (
	"context"
	"log/slog"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/pkg/slogx"
)

// Mirror republishes run events on per run subjects.
type Mirror struct {
	broker Broker
	prefix string
	logger *slog.Logger
}

// NewMirror creates a mirror publishing under prefix.
func NewMirror(b Broker, prefix string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		broker: b,
		prefix: prefix,
		logger: logger.With(slogx.LoggerName("mirror")),
	}
}

// Observe publishes ev. Failures are logged and otherwise ignored.
func (m *Mirror) Observe(ctx context.Context, threadID, runID string, ev events.Event) {
	subject := Subject(m.prefix, threadID, runID)
	if err := m.broker.Topic(ctx, subject).Publish(ctx, ev); err != nil {
		m.logger.WarnContext(ctx, "failed to mirror event",
			slogx.Error(err),
			slog.String("subject", subject),
			slog.String("event", string(ev.Type())),
		)
	}
}
