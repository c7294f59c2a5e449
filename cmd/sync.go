package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathblocks/internal/analytics"
	"github.com/abhisek/mathblocks/internal/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Send unsynced events to the configured endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("endpoint"); v != "" {
			settings.SyncEndpoint = v
		}
		log := logging.Console(settings.LogLevel)

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		syncer := analytics.NewSyncer(s.EventRepo(), syncConfig(settings), log)
		if !syncer.Enabled() {
			return fmt.Errorf("no sync endpoint configured (set [sync] endpoint or --endpoint)")
		}
		res, err := syncer.Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		if res.Sent == 0 {
			fmt.Println("Nothing to sync.")
			return nil
		}
		fmt.Printf("Sent %d events in %d batches.\n", res.Sent, res.Batches)
		return nil
	},
}

func init() {
	syncCmd.Flags().String("endpoint", "", "Override the sync endpoint URL")
}
