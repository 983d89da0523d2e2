package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	serveFlags := &ServeFlags{}
	apiFlags := &APIFlags{}

	root := &cobra.Command{
		Use:   "companion",
		Short: "Supervise the local GhostStream server",
		Long: "companion manages the lifecycle of the local GhostStream server:\n" +
			"it spawns and stops the process, waits for its health endpoint, and\n" +
			"answers network-identity questions for the tray UI.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "path to companion.toml")

	root.AddCommand(
		createServeCommand(globalFlags, serveFlags),
		createStartCommand(apiFlags),
		createStopCommand(apiFlags),
		createStatusCommand(apiFlags),
		createHealthCommand(apiFlags),
		createCapabilitiesCommand(apiFlags),
		createWaitCommand(apiFlags),
		createIPCommand(globalFlags),
		createNetworkCommand(globalFlags),
	)
	registerAPIFlags(root, apiFlags)
	return root
}
