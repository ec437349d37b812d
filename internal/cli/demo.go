package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"slot-swapper/internal/adapters/storage"
	"slot-swapper/internal/demo"
)

// NewDemoCommand carga los usuarios y slots demo en el backend configurado.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed demo users and slots",
		Long: `Seed demo users and slots into the configured storage.

Idempotente: los registros que ya existen se dejan como están.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := rootOpts.load()
			if err != nil {
				return err
			}

			store, err := storage.Open(cmd.Context(), cfg.Storage, true)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()

			res, err := demo.Seed(cmd.Context(), demo.Repos{Users: store.Users(), Events: store.Events()}, time.Now())
			if err != nil {
				return fmt.Errorf("seed demo: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d events (%s)\n", res.Users, res.Events, cfg.Storage.Driver)
			return nil
		},
	}
}
