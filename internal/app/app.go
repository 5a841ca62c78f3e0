// Package app wires configuration, telemetry, the agent, the event mirror and the
// HTTP server into one process lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/casualjim/hoot/agent"
	"github.com/casualjim/hoot/internal/broker"
	"github.com/casualjim/hoot/internal/config"
	"github.com/casualjim/hoot/internal/httpapi"
	"github.com/casualjim/hoot/internal/telemetry"
	"github.com/casualjim/hoot/pkg/natsx"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/provider"
	"github.com/fogfish/opts"
	"github.com/nats-io/nats.go"
)

const readHeaderTimeout = 10 * time.Second

// App owns runtime wiring and HTTP server lifecycle.
type App struct {
	cfg     config.Config
	logger  *slog.Logger
	model   provider.Model
	agent   *agent.Agent
	events  broker.Broker
	debug   bool
	version string

	api               *httpapi.Server
	server            *http.Server
	nc                *nats.Conn
	shutdownTelemetry telemetry.ShutdownFunc
	ready             atomic.Bool
}

var (
	// WithModel replaces the OpenAI model built from the configuration.
	WithModel   = opts.ForName[App, provider.Model]("model")
	WithDebug   = opts.ForName[App, bool]("debug")
	WithVersion = opts.ForName[App, string]("version")
)

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, options ...opts.Option[App]) (*App, error) {
	if logger == nil {
		return nil, errors.New("new app: nil logger")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new app config: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
	}
	if err := opts.Apply(a, options); err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "hoot",
		ServiceVersion: a.version,
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("new app telemetry: %w", err)
	}
	a.shutdownTelemetry = shutdownTelemetry

	if err := a.wireAgent(); err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	a.api = httpapi.New(a.agent, httpapi.Config{
		MaxRequestBodyBytes: cfg.Server.MaxBodyBytes,
		CORSOrigins:         cfg.Server.CORSOrigins,
		Debug:               a.debug,
		Events:              a.events,
		EventSubject:        cfg.Broker.Subject,
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/readyz", a.handleReadyz)
	mux.Handle("/", a.api)
	a.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return a, nil
}

func (a *App) wireAgent() error {
	if err := a.wireBroker(); err != nil {
		return err
	}
	agentOpts := []opts.Option[agent.Agent]{
		agent.WithLogger(a.logger),
		agent.WithObserver(broker.NewMirror(a.events, a.cfg.Broker.Subject, a.logger)),
	}

	if a.model != nil {
		ag, err := agent.New(append(agentOpts, agent.WithModel(a.model))...)
		if err != nil {
			return fmt.Errorf("new app agent: %w", err)
		}
		a.agent = ag
		return nil
	}

	ag, err := agent.NewOpenAI(agent.OpenAIConfig{
		APIKey:  a.cfg.Agent.APIKey,
		BaseURL: a.cfg.Agent.BaseURL,
		Model:   a.cfg.Agent.Model,
	}, agentOpts...)
	if err != nil {
		return fmt.Errorf("new app agent: %w", err)
	}
	a.agent = ag
	return nil
}

// wireBroker picks the transport run events are mirrored to.
func (a *App) wireBroker() error {
	subject := slog.String("subject", a.cfg.Broker.Subject+".<threadId>.<runId>")
	if a.cfg.Broker.NATSURL == "" {
		a.events = broker.Local().WithSlowSubscriberTimeout(a.cfg.Broker.SlowSubscriberTimeout)
		a.logger.Info("mirroring run events in process", subject)
		return nil
	}

	nc, err := natsx.NewClient(a.cfg.Broker.NATSURL)
	if err != nil {
		return fmt.Errorf("new app nats: %w", err)
	}
	a.nc = nc
	a.events = broker.NATS(nc)
	a.logger.Info("mirroring run events",
		slog.String("nats_url", nc.ConnectedUrlRedacted()),
		subject,
	)
	return nil
}

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Start listens on the configured address and serves until Shutdown.
func (a *App) Start() error {
	l, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	return a.Serve(l)
}

// Serve accepts connections on l until Shutdown.
func (a *App) Serve(l net.Listener) error {
	a.logger.Info("listening",
		slogx.Stringer("addr", l.Addr()),
		slog.String("model", a.agent.Model().Name()),
	)
	a.ready.Store(true)

	err := a.server.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	a.ready.Store(false)
	return err
}

// Shutdown stops accepting requests and waits for streaming runs until ctx expires,
// then cancels the remaining runs and closes their connections.
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return errors.New("shutdown: nil context")
	}
	a.ready.Store(false)
	a.logger.Info("shutting down", slog.Int("in_flight", a.api.InFlight()))

	err := a.server.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		n := a.api.CancelRuns()
		a.logger.Warn("graceful shutdown timed out; forcing connection close", slog.Int("canceled_runs", n))
		if closeErr := a.server.Close(); closeErr != nil {
			err = fmt.Errorf("shutdown timeout and forced close failed: %w", errors.Join(err, closeErr))
		} else {
			err = nil
		}
	}

	return errors.Join(err, a.close(context.WithoutCancel(ctx)))
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			a.logger.Warn("failed to drain nats connection", slogx.Error(err))
			errs = append(errs, err)
		}
	}
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writePlain(w, http.StatusOK, "ok")
}

func (a *App) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !a.ready.Load() {
		writePlain(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writePlain(w, http.StatusOK, "ready")
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
