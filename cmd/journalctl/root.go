package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trading-journal-go/internal/client"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/logger"
)

// rootConfig is shared by every subcommand. It is filled in PersistentPreRunE.
type rootConfig struct {
	configDir string
	baseURL   string

	cfg    config.Config
	log    *zap.Logger
	api    client.APIClient
	newAPI func(cfg *config.Client, log *zap.Logger) client.APIClient
}

// newRootCmd builds the command tree. A nil newAPI uses the HTTP client.
func newRootCmd(newAPI func(cfg *config.Client, log *zap.Logger) client.APIClient) *cobra.Command {
	rc := &rootConfig{newAPI: newAPI}
	if rc.newAPI == nil {
		rc.newAPI = func(cfg *config.Client, log *zap.Logger) client.APIClient {
			return client.NewClient(cfg, log)
		}
	}

	cmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "Inspect and feed the trading journal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rc.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rc.log != nil {
				_ = rc.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&rc.configDir, "config", "./configs", "directory holding config.yml")
	cmd.PersistentFlags().StringVar(&rc.baseURL, "url", "", "journal server base URL (overrides client.base_url)")

	cmd.AddCommand(
		newHoldingsCmd(rc),
		newPositionsCmd(rc),
		newOrdersCmd(rc),
		newSeedCmd(rc),
	)
	return cmd
}

func (rc *rootConfig) load() error {
	cfg, err := config.LoadConfig(rc.configDir)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if rc.baseURL != "" {
		cfg.Client.BaseURL = rc.baseURL
	}
	rc.cfg = cfg

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return err
	}
	rc.log = log
	rc.api = rc.newAPI(&rc.cfg.Client, log)
	return nil
}
