package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/casualjim/hoot/internal/app"
	"github.com/casualjim/hoot/internal/config"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	port    int
	debug   bool
	envFile string
}

func newRootCmd(version string, out io.Writer) *cobra.Command {
	var so serveOptions

	cmd := &cobra.Command{
		Use:           "agui-server",
		Short:         "AG-UI server for OpenAI-compatible chat models",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.LoadFiles(so.envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = so.port
			}
			if so.debug {
				cfg.Log.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(ctx, cfg, so, version, out)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&so.port, "port", "p", 8000, "port to listen on (overrides PORT)")
	flags.BoolVarP(&so.debug, "debug", "d", false, "enable debug logging and request dumps")
	flags.StringVar(&so.envFile, "env-file", config.DefaultEnvFile, "dotenv file to load when present")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, so serveOptions, version string, out io.Writer) error {
	logger := slogx.NewLogger(os.Stderr, cfg.Log.SlogLevel(), cfg.Log.SlogFormat())
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger, app.WithDebug(so.debug), app.WithVersion(version))
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		_ = a.Shutdown(ctx)
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr(), err)
	}

	served := make(chan error, 1)
	go func() { served <- a.Serve(l) }()
	printBanner(out, l.Addr(), cfg)

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(out, color.YellowString("Shutting down server..."))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-served; err != nil {
		return err
	}
	fmt.Fprintln(out, color.GreenString("Server closed successfully"))
	return nil
}

func printBanner(out io.Writer, addr net.Addr, cfg config.Config) {
	fmt.Fprintln(out, color.GreenString("Server started successfully!"))
	fmt.Fprintf(out, "%s %s\n", color.BlueString("AG-UI Server listening on"), color.New(color.Bold).Sprint(addr.String()))
	fmt.Fprintf(out, "  %s %s\n", color.CyanString("model:"), cfg.Agent.Model)
	fmt.Fprintf(out, "  %s %s\n", color.CyanString("upstream:"), cfg.Agent.BaseURL)
	if cfg.Broker.NATSURL != "" {
		fmt.Fprintf(out, "  %s %s.<threadId>.<runId>\n", color.CyanString("mirror:"), cfg.Broker.Subject)
	}
}
