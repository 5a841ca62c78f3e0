package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/encoding/sse"
	"github.com/casualjim/hoot/events"
)

const (
	ContentTypeJSON        = "application/json"
	ContentTypeEventStream = "text/event-stream"
)

// ErrUnknownEvent is returned when asked to encode something that is not an AG-UI event.
var ErrUnknownEvent = errors.New("unknown event")

// Encoder serializes events for one response. It holds no mutable state and is safe
// for concurrent use.
type Encoder struct {
	accept string
	sse    bool
	writer *sse.SSEWriter
}

// New creates an encoder for the given Accept header value.
func New(accept string) *Encoder {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		accept = ContentTypeJSON
	}
	return &Encoder{
		accept: accept,
		sse:    isEventStream(accept),
		writer: sse.NewSSEWriter(),
	}
}

// WithLogger sets the logger the event stream writer reports framing failures to.
func (e *Encoder) WithLogger(logger *slog.Logger) *Encoder {
	if logger != nil {
		e.writer = e.writer.WithLogger(logger)
	}
	return e
}

// ContentType is the value to send as the response Content-Type.
func (e *Encoder) ContentType() string {
	return e.accept
}

// EventStream reports whether frames are Server-Sent Events.
func (e *Encoder) EventStream() bool {
	return e.sse
}

// Encode serializes a single event into one complete frame.
func (e *Encoder) Encode(ctx context.Context, ev events.Event) ([]byte, error) {
	if ev == nil || ev.GetBaseEvent() == nil {
		return nil, ErrUnknownEvent
	}
	if e.sse {
		return e.encodeEventStream(ctx, ev)
	}

	body, err := ev.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type(), err)
	}
	return append(body, '\n'), nil
}

// encodeEventStream frames ev with the SDK writer. Events the SDK considers
// incomplete, such as a tool call whose name never arrived, are still forwarded as
// a bare data frame.
func (e *Encoder) encodeEventStream(ctx context.Context, ev events.Event) ([]byte, error) {
	// The SDK codec refuses a canceled context. An event already produced is still framed.
	ctx = context.WithoutCancel(ctx)

	var buf bytes.Buffer
	if ev.Validate() == nil {
		if err := e.writer.WriteEvent(ctx, &buf, ev); err != nil {
			return nil, fmt.Errorf("encode %s: %w", ev.Type(), err)
		}
		return buf.Bytes(), nil
	}

	body, err := ev.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type(), err)
	}
	if err := e.writer.WriteBytes(ctx, &buf, body); err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type(), err)
	}
	return buf.Bytes(), nil
}

func isEventStream(accept string) bool {
	return strings.Contains(strings.ToLower(accept), ContentTypeEventStream)
}
