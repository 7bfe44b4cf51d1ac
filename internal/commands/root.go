// Package commands is the rentease command line: the HTTP server plus the
// admin utilities that run against the configured store.
package commands

import (
	"github.com/spf13/cobra"

	"rentease-service/internal/config"
)

var cfg config.Config

func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rentease",
		Short:        "Rental listing service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.AddCommand(serveCmd(), reportCmd(), tiersCmd())
	return root
}
