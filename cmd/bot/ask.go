package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shoushou-fitness/clubbot/internal/config"
	"github.com/shoushou-fitness/clubbot/internal/services"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

func newAskCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "ask TEXT [TEXT...]",
		Short: "Route texts as one user against the configured backend and print the replies as JSON",
		Example: `  clubbot ask "member area"
  clubbot ask "query member data" "A00012"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if err := cfg.ValidateBackend(); err != nil {
				return err
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
			ctx := cmd.Context()

			gateway, closeGateway, err := openGateway(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			defer closeGateway()

			states := services.NewMemoryStateStore(0)
			defer states.Close()

			bot := newBot(cfg, gateway, states, nil, logger)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, text := range args {
				out := map[string]any{"input": text, "payloads": bot.Respond(ctx, userID, text)}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "cli", "user id to route as")
	return cmd
}
