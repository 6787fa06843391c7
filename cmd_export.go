package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"RSVPBot/config"
	"RSVPBot/handler"
	"RSVPBot/repo"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print mirrored RSVPs as JSON lines",
	Long: `Print every RSVP stored in the Firebase mirror, oldest first, one JSON
object per line.

Requires FIREBASE_SERVICE_ACCOUNT_KEY_PATH and FIREBASE_DATABASE_URL.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.FirebaseKeyPath == "" || cfg.FirebaseDatabaseURL == "" {
			return errors.New("FIREBASE_SERVICE_ACCOUNT_KEY_PATH and FIREBASE_DATABASE_URL are required")
		}

		ctx := runContext(cmd)
		fc, err := repo.NewFirebaseConnectorFromKeyFile(ctx, cfg.FirebaseKeyPath, cfg.FirebaseDatabaseURL)
		if err != nil {
			return err
		}
		return exportSubmissions(cmd, fc)
	},
}

func exportSubmissions(cmd *cobra.Command, lister handler.SubmissionLister) error {
	list, err := lister.ListSubmissions(runContext(cmd))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, s := range list {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("error writing rsvp %s: %w", s.ID(), err)
		}
	}
	return nil
}
