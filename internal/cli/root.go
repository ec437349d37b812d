package cli

import (
	"github.com/spf13/cobra"

	"slot-swapper/internal/platform/config"
	"slot-swapper/internal/platform/logger"
)

// RootOptions son los flags globales de todos los comandos.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand arma el comando raíz de slot-swapper.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "slot-swapper",
		Short:         "SlotSwapper - intercambio de slots de calendario",
		Long:          "API para publicar slots de calendario como swappable y negociar intercambios entre usuarios.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "archivo YAML de configuración (opcional)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}

// load lee la config y arma el logger del proceso.
func (o *RootOptions) load() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "slot-swapper",
	})
	return cfg, log, nil
}
