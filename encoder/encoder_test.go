package encoder

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/casualjim/hoot/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNew_ContentType(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   string
		sse    bool
	}{
		{name: "empty defaults to json", accept: "", want: "application/json"},
		{name: "json", accept: "application/json", want: "application/json"},
		{name: "event stream", accept: "text/event-stream", want: "text/event-stream", sse: true},
		{
			name:   "event stream among others is echoed verbatim",
			accept: "text/event-stream, application/json;q=0.9",
			want:   "text/event-stream, application/json;q=0.9",
			sse:    true,
		},
		{name: "wildcard", accept: "*/*", want: "*/*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := New(tt.accept)
			assert.Equal(t, tt.want, enc.ContentType())
			assert.Equal(t, tt.sse, enc.EventStream())
		})
	}
}

// dataLine returns the payload of the single data line of an SSE frame.
func dataLine(t *testing.T, frame string) string {
	t.Helper()
	var data []string
	for _, line := range strings.Split(strings.TrimSuffix(frame, "\n\n"), "\n") {
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			data = append(data, payload)
		}
	}
	require.Len(t, data, 1, "frame %q", frame)
	return data[0]
}

func TestEncode_EventStreamFrame(t *testing.T) {
	ev := events.NewRunStarted("t1", "r1")
	frame, err := New("text/event-stream").Encode(context.Background(), ev)
	require.NoError(t, err)

	s := string(frame)
	assert.True(t, strings.HasPrefix(s, "id: RUN_STARTED_"), "frame %q", s)
	assert.True(t, strings.HasSuffix(s, "\n\n"))

	payload := dataLine(t, s)
	assert.Equal(t, "RUN_STARTED", gjson.Get(payload, "type").String())
	assert.Equal(t, "t1", gjson.Get(payload, "threadId").String())
	assert.Equal(t, "r1", gjson.Get(payload, "runId").String())
	assert.Equal(t, *ev.Timestamp(), gjson.Get(payload, "timestamp").Int())
}

func TestEncode_EventStreamKeepsUnnamedToolCall(t *testing.T) {
	frame, err := New("text/event-stream").Encode(context.Background(), events.NewToolCallStart("c1", ""))
	require.NoError(t, err)

	payload := dataLine(t, string(frame))
	assert.Equal(t, "TOOL_CALL_START", gjson.Get(payload, "type").String())
	assert.Equal(t, "c1", gjson.Get(payload, "toolCallId").String())
	assert.True(t, gjson.Get(payload, "toolCallName").Exists())
	assert.Equal(t, "", gjson.Get(payload, "toolCallName").String())
}

func TestEncode_EventStreamAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame, err := New("text/event-stream").Encode(ctx, events.NewTextMessageEnd("m1"))
	require.NoError(t, err)
	assert.Equal(t, "m1", gjson.Get(dataLine(t, string(frame)), "messageId").String())
}

func TestEncode_NDJSONFrame(t *testing.T) {
	frame, err := New("application/json").Encode(context.Background(), events.NewTextMessageContent("m1", "a\nb"))
	require.NoError(t, err)

	s := string(frame)
	assert.Equal(t, 1, strings.Count(s, "\n"), "embedded newlines must be escaped")
	assert.True(t, strings.HasSuffix(s, "\n"))
	assert.Equal(t, "TEXT_MESSAGE_CONTENT", gjson.Get(s, "type").String())
	assert.Equal(t, "m1", gjson.Get(s, "messageId").String())
	assert.Equal(t, "a\nb", gjson.Get(s, "delta").String())
}

func TestEncode_Nil(t *testing.T) {
	_, err := New("").Encode(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = New("text/event-stream").Encode(context.Background(), &events.TextMessageEnd{MessageID: "m"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func sampleRun() []events.Event {
	return []events.Event{
		events.NewRunStarted("t", "r"),
		events.NewTextMessageStart("m"),
		events.NewTextMessageContent("m", "Hello"),
		events.NewToolCallStart("c", "f"),
		events.NewToolCallArgs("c", `{"a":1}`),
		events.NewToolCallEnd("c"),
		events.NewTextMessageEnd("m"),
		events.NewStateSnapshot(events.Snapshot{
			LastResponse: "Hello",
			LastToolCall: &events.ToolCallSummary{Name: "f", Arguments: `{"a":1}`},
		}),
		events.NewRunFinished("t", "r"),
	}
}

func TestDecoder_ReadsEncoderOutput(t *testing.T) {
	for _, accept := range []string{"text/event-stream", "application/json"} {
		t.Run(accept, func(t *testing.T) {
			enc := New(accept)
			want := sampleRun()

			var buf bytes.Buffer
			for _, ev := range want {
				frame, err := enc.Encode(context.Background(), ev)
				require.NoError(t, err)
				buf.Write(frame)
			}

			var got []events.Event
			for ev, err := range NewDecoder(&buf, enc.ContentType()).All() {
				require.NoError(t, err)
				got = append(got, ev)
			}
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].Type(), got[i].Type())
				assert.Equal(t, want[i].Timestamp(), got[i].Timestamp())

				wantJSON, err := want[i].ToJSON()
				require.NoError(t, err)
				gotJSON, err := got[i].ToJSON()
				require.NoError(t, err)
				assert.JSONEq(t, string(wantJSON), string(gotJSON))
			}

			snapshot, err := events.SnapshotOf(got[7].(*events.StateSnapshot))
			require.NoError(t, err)
			assert.Equal(t, "Hello", snapshot.LastResponse)
			require.NotNil(t, snapshot.LastToolCall)
			assert.Equal(t, "f", snapshot.LastToolCall.Name)
		})
	}
}

func TestDecoder_SkipsCommentsAndFields(t *testing.T) {
	stream := ": keepalive\n\n" +
		"event: message\nid: 1\ndata: {\"type\":\"TEXT_MESSAGE_END\",\"messageId\":\"m\"}\n\n"

	dec := NewDecoder(strings.NewReader(stream), "text/event-stream")
	ev, err := dec.Next()
	require.NoError(t, err)
	require.IsType(t, &events.TextMessageEnd{}, ev)
	assert.Equal(t, "m", ev.(*events.TextMessageEnd).MessageID)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_StopsOnError(t *testing.T) {
	stream := "{\"type\":\"RUN_STARTED\",\"threadId\":\"t\",\"runId\":\"r\"}\n{\"type\":\"NOPE\"}\n{\"type\":\"RUN_FINISHED\",\"threadId\":\"t\",\"runId\":\"r\"}\n"

	var (
		count int
		errs  []error
	)
	for ev, err := range NewDecoder(strings.NewReader(stream), "application/json").All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		assert.NotNil(t, ev)
		count++
	}
	assert.Equal(t, 1, count)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], events.ErrUnknownType)
}
