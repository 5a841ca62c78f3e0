package uuidx

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces identifiers for one run. Agents accept a Generator so tests
// can make message and tool call ids deterministic.
type Generator func() string

// New returns a random (version 4) UUID. The random bits come from crypto/rand,
// so identifiers minted by concurrent runs do not collide in practice.
// It panics if the random source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewRandom())
}

// NewString returns New as its canonical string form.
func NewString() string {
	return New().String()
}

// Sequence returns a Generator that yields prefix-1, prefix-2, ... on successive calls.
// It is not safe for concurrent use and is meant for tests.
func Sequence(prefix string) Generator {
	var n int
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
