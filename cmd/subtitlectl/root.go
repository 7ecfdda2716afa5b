package main

import (
	"github.com/spf13/cobra"

	"subtitle-collector/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "subtitlectl",
		Short: "Collect YouTube subtitles from the command line",
		Long: `subtitlectl runs the subtitle pipeline without the HTTP server.
It reads the same environment variables (and .env file) as the server, so
submissions land in the configured primary store and archive.`,
		SilenceUsage: true,
	}

	root.AddCommand(newSubmitCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newNormalizeCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
