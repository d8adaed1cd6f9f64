package main

import (
	"github.com/spf13/cobra"

	"github.com/darkostanimirovic/cinesnap/internal/config"
)

func newRootCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:   "cinesnap",
		Short: "Conversational movie recommendations",
		Long: `CineSnap turns a conversation about mood and company into movie picks
drawn from the TMDB catalog.

Configuration is read from the environment; .env files are loaded first.

Available subcommands:
  serve       Run the HTTP API
  chat        Chat with the assistant in the terminal

Examples:
  cinesnap serve
  cinesnap chat
  cinesnap chat --env-file ./dev.env`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFiles(envFiles...)
		},
	}

	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Environment files to load before reading configuration")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	return cmd
}
