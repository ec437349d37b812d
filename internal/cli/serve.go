package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"slot-swapper/internal/adapters/auth/session"
	"slot-swapper/internal/adapters/identity/directory"
	"slot-swapper/internal/adapters/storage"
	"slot-swapper/internal/demo"
	"slot-swapper/internal/domain/users"
	"slot-swapper/internal/jobs/sweeper"
	"slot-swapper/internal/platform/config"
	"slot-swapper/internal/platform/logger"
	"slot-swapper/internal/router"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	port int
	seed bool
}

// NewServeCommand levanta la API HTTP y el sweeper.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			if opts.port > 0 {
				cfg.Port = opts.port
			}
			if opts.seed {
				cfg.SeedDemo = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, log)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "puerto HTTP (pisa config y PORT)")
	cmd.Flags().BoolVar(&opts.seed, "seed", false, "cargar usuarios y slots demo al arrancar")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := storage.Open(ctx, cfg.Storage, true)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close storage failed", logger.Fields{"err": err})
		}
	}()

	if cfg.SeedDemo {
		res, err := demo.Seed(ctx, demo.Repos{Users: store.Users(), Events: store.Events()}, time.Now())
		if err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
		log.Info("demo data seeded", logger.Fields{"users": res.Users, "events": res.Events})
	}

	opts := router.Options{
		Store:              store,
		Sessions:           session.NewStore(cfg.Auth.SessionTTL),
		DisableDebugHeader: !cfg.Auth.DebugHeader,
		Logger:             log,
	}

	if cfg.Identity.BaseURL != "" {
		names, err := directory.NewClient(directory.Config{
			BaseURL:      cfg.Identity.BaseURL,
			APIKey:       cfg.Identity.APIKey,
			APIKeyHeader: cfg.Identity.APIKeyHeader,
			Timeout:      cfg.Identity.Timeout,
		}, users.NewService(store.Users(), nil), log)
		if err != nil {
			return fmt.Errorf("identity directory: %w", err)
		}
		opts.Names = names
	}

	svcs := router.NewServices(opts)

	if cfg.Sweeper.Enabled {
		sw := sweeper.New(svcs.Swaps, log)
		if err := sw.Start(cfg.Sweeper.Schedule); err != nil {
			return fmt.Errorf("start sweeper: %w", err)
		}
		defer sw.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewHandler(svcs, opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", logger.Fields{"addr": srv.Addr, "storage": cfg.Storage.Driver})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
