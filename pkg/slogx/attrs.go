package slogx

import (
	"fmt"
	"log/slog"
)

const (
	// KeyLoggerName is the attribute key that names the component emitting a record.
	KeyLoggerName = "logger"
	// KeyThreadID is the attribute key for an AG-UI thread id.
	KeyThreadID = "thread_id"
	// KeyRunID is the attribute key for an AG-UI run id.
	KeyRunID = "run_id"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
// A nil error renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// ByteString creates a slog.Attr with the given key and the byte slice rendered as a string.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Stringer creates a slog.Attr with the provided key and the string representation
// of the given fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// LoggerName creates a slog.Attr with the provided logger name.
// The attribute key is defined by KeyLoggerName.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// ThreadID returns the thread id attribute.
func ThreadID(id string) slog.Attr {
	return slog.String(KeyThreadID, id)
}

// RunID returns the run id attribute.
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Run groups the thread and run ids under the "run" key.
func Run(threadID, runID string) slog.Attr {
	return slog.Group("run", ThreadID(threadID), RunID(runID))
}
