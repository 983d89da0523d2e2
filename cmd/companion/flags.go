package main

import (
	"time"

	"github.com/spf13/cobra"
)

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

// ServeFlags holds flags for the serve command.
type ServeFlags struct {
	Listen   string
	BasePath string
}

// APIFlags holds control-API connection flags for client commands.
type APIFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

// registerAPIFlags adds the control-API flags to every client
// subcommand so "companion start --api-url ..." works uniformly.
func registerAPIFlags(root *cobra.Command, f *APIFlags) {
	for _, cmd := range root.Commands() {
		switch cmd.Name() {
		case "start", "stop", "status", "health", "capabilities", "wait":
			cmd.Flags().StringVar(&f.APIUrl, "api-url", "", "companion control API URL (default http://127.0.0.1:8770/api)")
			cmd.Flags().DurationVar(&f.APITimeout, "api-timeout", 5*time.Second, "control API request timeout")
		}
	}
}
