package agent

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/casualjim/hoot/encoder"
	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/pkg/uuidx"
	"github.com/casualjim/hoot/protocol"
	"github.com/casualjim/hoot/provider"
	"github.com/fogfish/opts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/casualjim/hoot/agent"

var (
	// ErrModelRequired is returned when an agent is created without a model.
	ErrModelRequired = errors.New("agent: model is required")
	// ErrMissingAPIKey is returned when the upstream API key is not configured.
	ErrMissingAPIKey = errors.New("agent: OPENAI_API_KEY is required")
)

// Observer is notified of every event after the consumer has accepted it.
type Observer interface {
	Observe(ctx context.Context, threadID, runID string, ev events.Event)
}

// Agent turns run requests into AG-UI event streams. It is immutable after New and
// safe for concurrent runs.
type Agent struct {
	model    provider.Model
	logger   *slog.Logger
	newID    uuidx.Generator
	tracer   trace.Tracer
	observer Observer
}

var (
	WithModel    = opts.ForName[Agent, provider.Model]("model")
	WithLogger   = opts.ForName[Agent, *slog.Logger]("logger")
	WithTracer   = opts.ForName[Agent, trace.Tracer]("tracer")
	WithObserver = opts.ForName[Agent, Observer]("observer")
)

// WithIDGenerator replaces the generator used for message and tool call ids.
func WithIDGenerator(gen func() string) opts.Option[Agent] {
	return opts.Type[Agent](func(a *Agent) error {
		if gen == nil {
			return errors.New("agent: id generator must not be nil")
		}
		a.newID = gen
		return nil
	})
}

// New creates an agent. A model is required.
func New(options ...opts.Option[Agent]) (*Agent, error) {
	a := &Agent{
		newID: uuidx.NewString,
	}
	if err := opts.Apply(a, options); err != nil {
		return nil, err
	}
	if a.model == nil {
		return nil, ErrModelRequired
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(tracerName)
	}
	a.logger = a.logger.With(slogx.LoggerName("agent"))
	return a, nil
}

// Model returns the model runs are sent to.
func (a *Agent) Model() provider.Model {
	return a.model
}

// Run returns the event sequence for one run. The sequence is single use and does no
// work until iterated.
func (a *Agent) Run(ctx context.Context, input protocol.RunAgentInput) iter.Seq[events.Event] {
	return func(yield func(events.Event) bool) {
		ctx, span := a.tracer.Start(ctx, "agent.Run", trace.WithAttributes(
			attribute.String("agui.thread_id", input.ThreadID),
			attribute.String("agui.run_id", input.RunID),
			attribute.String("llm.model", a.model.Name()),
			attribute.Int("agui.messages", len(input.Messages)),
			attribute.Int("agui.tools", len(input.Tools)),
		))
		defer span.End()

		r := &run{
			agent:  a,
			ctx:    ctx,
			input:  input,
			yield:  yield,
			logger: a.logger.With(slogx.Run(input.ThreadID, input.RunID)),
		}
		r.execute()

		span.SetAttributes(
			attribute.Int("agui.events", r.emitted),
			attribute.Bool("agui.tool_call", r.state.toolCallStarted),
		)
		if r.err != nil {
			span.RecordError(r.err)
			span.SetStatus(codes.Error, r.err.Error())
		}
	}
}

// Stream runs the translator and encodes every event with enc.
func (a *Agent) Stream(ctx context.Context, input protocol.RunAgentInput, enc *encoder.Encoder) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for ev := range a.Run(ctx, input) {
			frame, err := enc.Encode(ctx, ev)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(frame, nil) {
				return
			}
		}
	}
}
