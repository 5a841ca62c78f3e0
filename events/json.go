package events

import (
	"errors"
	"fmt"

	agui "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/tidwall/gjson"
)

// ErrUnknownType is returned by FromJSON for a type marker outside the events a run emits.
var ErrUnknownType = errors.New("unknown event type")

var emitted = map[EventType]bool{
	TypeRunStarted:         true,
	TypeRunFinished:        true,
	TypeTextMessageStart:   true,
	TypeTextMessageContent: true,
	TypeTextMessageEnd:     true,
	TypeToolCallStart:      true,
	TypeToolCallArgs:       true,
	TypeToolCallEnd:        true,
	TypeStateSnapshot:      true,
}

// FromJSON decodes a single serialized event of any type a run emits.
func FromJSON(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() {
		return nil, errors.New("missing required field 'type'")
	}
	if !emitted[EventType(msgType.String())] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msgType.String())
	}

	ev, err := agui.EventFromJSON(data)
	if err != nil {
		return nil, err
	}
	if ev.GetBaseEvent() == nil {
		return nil, fmt.Errorf("decode %s: missing event header", msgType.String())
	}
	return ev, nil
}
