package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/hoot/agent"
	"github.com/casualjim/hoot/internal/broker"
	"github.com/casualjim/hoot/pkg/slogx"
)

const (
	defaultMaxRequestBodyBytes = 4 << 20
	defaultEventSubject        = "agui.runs"
)

// Config holds the transport settings.
type Config struct {
	MaxRequestBodyBytes int64
	// CORSOrigins lists the allowed origins, "*" allows any.
	CORSOrigins []string
	// Debug dumps every decoded request at debug level.
	Debug bool
	// Events is the broker runs are mirrored to. The run events route answers 404
	// without one.
	Events       broker.Broker
	EventSubject string
}

// Server routes requests to the agent and tracks the responses it is streaming.
type Server struct {
	agent   *agent.Agent
	cfg     Config
	logger  *slog.Logger
	runs    *haxmap.Map[string, context.CancelFunc]
	handler http.Handler
}

// New creates the HTTP handler for a.
func New(a *agent.Agent, cfg Config, logger *slog.Logger) *Server {
	if cfg.MaxRequestBodyBytes <= 0 {
		cfg.MaxRequestBodyBytes = defaultMaxRequestBodyBytes
	}
	if cfg.EventSubject == "" {
		cfg.EventSubject = defaultEventSubject
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slogx.LoggerName("httpapi"))

	s := &Server{
		agent:  a,
		cfg:    cfg,
		logger: logger,
		runs:   haxmap.New[string, context.CancelFunc](),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /openai-agent", s.handleRun)
	mux.HandleFunc("GET /openai-agent/schema", s.handleSchema)
	mux.HandleFunc("GET /openai-agent/runs/{threadId}/{runId}/events", s.handleRunEvents)
	s.handler = chain(
		requestLoggingMiddleware(logger),
		corsMiddleware(cfg.CORSOrigins),
	)(mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// InFlight returns the number of responses currently streaming, runs and run event
// subscriptions alike.
func (s *Server) InFlight() int {
	return int(s.runs.Len())
}

// CancelRuns cancels every response that is still streaming.
func (s *Server) CancelRuns() int {
	var n int
	s.runs.ForEach(func(_ string, cancel context.CancelFunc) bool {
		cancel()
		n++
		return true
	})
	return n
}

type middleware func(http.Handler) http.Handler

func chain(middlewares ...middleware) middleware {
	return func(next http.Handler) http.Handler {
		wrapped := next
		for i := len(middlewares) - 1; i >= 0; i-- {
			wrapped = middlewares[i](wrapped)
		}
		return wrapped
	}
}
