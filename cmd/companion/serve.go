package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	companion "github.com/ghoststream/companion"
	"github.com/ghoststream/companion/internal/server"
)

func createServeCommand(g *GlobalFlags, f *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion control server",
		Long: "Runs the localhost control API the tray UI talks to. On SIGINT or\n" +
			"SIGTERM the GhostStream server is stopped before the companion exits.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(g, f)
		},
	}
	cmd.Flags().StringVar(&f.Listen, "listen", "", "control API listen address (overrides config)")
	cmd.Flags().StringVar(&f.BasePath, "base-path", "", "control API base path (overrides config)")
	return cmd
}

func runServe(g *GlobalFlags, f *ServeFlags) error {
	cfg, err := companion.LoadConfig(g.ConfigPath)
	if err != nil {
		return err
	}
	if f.Listen != "" {
		cfg.Control.Listen = f.Listen
	}
	if f.BasePath != "" {
		cfg.Control.BasePath = f.BasePath
	}

	logger := companion.NewLogger(cfg)
	if err := companion.RegisterMetricsDefault(); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	c, err := companion.New(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg.Control.Listen, cfg.Control.BasePath, c)
	logger.Info("control server listening", "addr", cfg.Control.Listen, "base_path", cfg.Control.BasePath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", s.String())

	// Quit ordering: the supervised server stops before the companion
	// exits. Stop errors cannot occur; this is fire-and-forget.
	c.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("control server shutdown", "error", err)
	}
	return nil
}
