package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "video",
	Short: "Terminal client for Video rooms",
	Long:  `Joins a Video room over the signaling server and connects to every participant peer to peer. Media flows directly between clients; the server only relays session descriptions and ICE candidates.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}
