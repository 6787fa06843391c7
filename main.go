package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rsvpbot",
	Short: "Wedding site and RSVP bot for Telegram",
	Long: `rsvpbot serves the wedding site pages over Telegram and walks guests
through the RSVP form.

Configuration is read from the environment, see the run command for the
variables it understands.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
