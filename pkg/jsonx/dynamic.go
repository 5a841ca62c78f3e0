package jsonx

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// ObjectFromRaw decodes raw JSON that must hold an object.
// Empty input and a JSON null both produce a nil map and no error.
func ObjectFromRaw(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %q", truncate(trimmed, 32))
	}

	result := make(map[string]any)
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
