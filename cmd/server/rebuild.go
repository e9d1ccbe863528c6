package main

import (
	"encoding/json"

	"github.com/dfryer1193/blogapi/api"
	"github.com/dfryer1193/blogapi/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func rebuildCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Sync the content repository and rebuild the index once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			setupLogging(cfg.Log)

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close database")
				}
			}()

			status, err := a.coordinator.Rebuild(cmd.Context(), "cli")
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.NewRebuildStatus(status))
		},
	}
}
