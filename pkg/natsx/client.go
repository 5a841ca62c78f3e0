package natsx

import (
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
)

// ErrNoURL is returned when no server URL is configured.
var ErrNoURL = errors.New("natsx: no server url")

// NewClient creates a new connection to the NATS server at url. Without explicit
// options the connection is named "hoot" and compression is enabled.
func NewClient(url string, opts ...nats.Option) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrNoURL
	}
	if len(opts) == 0 {
		opts = append(opts, nats.Name("hoot"), nats.Compression(true))
	}
	return nats.Connect(url, opts...)
}
