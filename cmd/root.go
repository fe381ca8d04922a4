package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by all commands.
type rootOptions struct {
	ConfigPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCommand(opts)
	cmd := &cobra.Command{
		Use:           "tank",
		Short:         "Water tank level simulator with safety interlocks",
		Long:          "Runs the tank interlock engine as a service (serve, the default) or offline (simulate).",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config.yml (default configs/config.yml)")

	cmd.AddCommand(serve)
	cmd.AddCommand(newSimulateCommand(opts))

	return cmd
}
