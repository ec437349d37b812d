package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"slot-swapper/internal/adapters/storage"
	"slot-swapper/internal/platform/config"
	"slot-swapper/internal/platform/logger"
)

// NewMigrateCommand aplica el schema del backend configurado y sale.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storage schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver == config.DriverMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "memory storage: nothing to migrate")
				return nil
			}

			store, err := storage.Open(cmd.Context(), cfg.Storage, true)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer store.Close()

			log.Info("schema applied", logger.Fields{"driver": cfg.Storage.Driver})
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema up to date\n", cfg.Storage.Driver)
			return nil
		},
	}
}
