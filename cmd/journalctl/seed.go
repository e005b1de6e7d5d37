package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trading-journal-go/internal/app"
	"trading-journal-go/internal/models"
)

// seedFile is the document loaded by `journalctl seed`.
type seedFile struct {
	Holdings  []models.Holding  `json:"holdings"`
	Positions []models.Position `json:"positions"`
}

func newSeedCmd(rc *rootConfig) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load holdings and positions from a JSON file into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var seed seedFile
			if err := json.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("decode seed file: %w", err)
			}

			if rc.cfg.Store.URI == "" {
				return errors.New("store uri is required (MONGO_URI)")
			}
			st, err := app.OpenStore(cmd.Context(), rc.cfg.Store, rc.log)
			if err != nil {
				return err
			}
			defer st.Close(cmd.Context())

			if err := st.InsertHoldings(cmd.Context(), seed.Holdings); err != nil {
				return err
			}
			if err := st.InsertPositions(cmd.Context(), seed.Positions); err != nil {
				return err
			}

			rc.log.Info("Seeded store",
				zap.Int("holdings", len(seed.Holdings)),
				zap.Int("positions", len(seed.Positions)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d holdings and %d positions\n", len(seed.Holdings), len(seed.Positions))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a JSON file with holdings and positions")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
