package encoder

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/casualjim/hoot/events"
)

const maxFrameBytes = 1024 * 1024

// Decoder reads frames produced by an Encoder back into events.
type Decoder struct {
	scanner *bufio.Scanner
	sse     bool
}

// NewDecoder creates a decoder for a stream served with the given content type.
func NewDecoder(source io.Reader, contentType string) *Decoder {
	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameBytes)
	return &Decoder{scanner: scanner, sse: isEventStream(contentType)}
}

// Next returns the next event, or io.EOF once the stream is exhausted.
func (d *Decoder) Next() (events.Event, error) {
	for {
		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		line := strings.TrimSpace(d.scanner.Text())
		if line == "" || (d.sse && strings.HasPrefix(line, ":")) {
			continue
		}

		payload := line
		if d.sse {
			var err error
			if payload, err = d.readFrame(line); err != nil {
				return nil, err
			}
			if payload == "" {
				continue
			}
		}

		ev, err := events.FromJSON([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		return ev, nil
	}
}

// All iterates over the remaining events. Iteration stops after the first error.
func (d *Decoder) All() iter.Seq2[events.Event, error] {
	return func(yield func(events.Event, error) bool) {
		for {
			ev, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// readFrame collects the data lines of one SSE frame. Other fields are ignored.
func (d *Decoder) readFrame(first string) (string, error) {
	var parts []string
	collect := func(line string) {
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			parts = append(parts, strings.TrimSpace(data))
		}
	}

	collect(first)
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" {
			break
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		collect(line)
	}
	if err := d.scanner.Err(); err != nil {
		return "", err
	}
	return strings.Join(parts, "\n"), nil
}
