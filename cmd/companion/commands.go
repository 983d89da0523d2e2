package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	companion "github.com/ghoststream/companion"
	"github.com/ghoststream/companion/pkg/client"
)

func newAPIClient(f *APIFlags) *client.Client {
	cfg := client.DefaultConfig()
	if f.APIUrl != "" {
		cfg.BaseURL = f.APIUrl
	}
	if f.APITimeout > 0 {
		cfg.Timeout = f.APITimeout
	}
	return client.New(cfg)
}

func requireReachable(ctx context.Context, c *client.Client) error {
	if !c.IsReachable(ctx) {
		return fmt.Errorf("companion not reachable - start it first with 'companion serve'")
	}
	return nil
}

func createStartCommand(f *APIFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the GhostStream server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newAPIClient(f)
			if err := requireReachable(cmd.Context(), c); err != nil {
				return err
			}
			if err := c.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("server starting")
			return nil
		},
	}
}

func createStopCommand(f *APIFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the GhostStream server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newAPIClient(f)
			if err := requireReachable(cmd.Context(), c); err != nil {
				return err
			}
			if err := c.Stop(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("server stopped")
			return nil
		},
	}
}

func createStatusCommand(f *APIFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show supervisor status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newAPIClient(f)
			if err := requireReachable(cmd.Context(), c); err != nil {
				return err
			}
			st, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			if st.Running {
				fmt.Printf("running (pid %d, since %s)\n", st.PID, st.StartedAt.Format(time.RFC3339))
			} else {
				fmt.Println("not running")
			}
			return nil
		},
	}
}

func createHealthCommand(f *APIFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Query the server's health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newAPIClient(f)
			if err := requireReachable(cmd.Context(), c); err != nil {
				return err
			}
			body, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(body)
			return nil
		},
	}
}

func createCapabilitiesCommand(f *APIFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Query the server's capabilities endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newAPIClient(f)
			if err := requireReachable(cmd.Context(), c); err != nil {
				return err
			}
			body, err := c.Capabilities(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(body)
			return nil
		},
	}
}

func createWaitCommand(f *APIFlags) *cobra.Command {
	var window time.Duration
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait until the server answers its health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newAPIClient(f)
			if err := requireReachable(cmd.Context(), c); err != nil {
				return err
			}
			body, err := c.WaitReady(cmd.Context(), window)
			if err != nil {
				return err
			}
			fmt.Println(body)
			return nil
		},
	}
	cmd.Flags().DurationVar(&window, "window", 20*time.Second, "readiness window the companion is configured with")
	return cmd
}

// ip and network are stateless; they run locally without a daemon.

func createIPCommand(g *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ip",
		Short: "Print the host's outward-facing local IP",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newLocalCompanion(g)
			if err != nil {
				return err
			}
			defer c.Shutdown()
			ip, err := c.GetLocalIPAddress()
			if err != nil {
				return err
			}
			fmt.Println(ip)
			return nil
		},
	}
}

func createNetworkCommand(g *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "network",
		Short: "Report whether the host is on the access-point subnet",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newLocalCompanion(g)
			if err != nil {
				return err
			}
			defer c.Shutdown()
			if c.IsOnAccessPointNetwork() {
				fmt.Println("on access-point network")
			} else {
				fmt.Println("not on access-point network")
			}
			return nil
		},
	}
}

// newLocalCompanion builds a facade for stateless local queries. History
// is left disabled regardless of config; these commands must not write
// lifecycle events.
func newLocalCompanion(g *GlobalFlags) (*companion.Companion, error) {
	cfg, err := companion.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.History.Enabled = false
	return companion.New(cfg, companion.NewLogger(cfg))
}
