package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/sidoarjo/callcenter/internal/database"
	"github.com/sidoarjo/callcenter/internal/web"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func runServe(ctx context.Context, migrateFirst bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_file_size", cfg.Import.MaxFileSize,
		"users", len(cfg.Auth.Users),
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("connected to database", "name", database.Name(cfg.Database.URL))

	if migrateFirst {
		if err := migrateUp(pool); err != nil {
			return err
		}
	}

	service, err := core.NewService(pool, cfg)
	if err != nil {
		return err
	}
	slog.Info("tables registered", "count", core.SchemaCount(), "tables", core.Keys())

	server, err := web.NewServer(service, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return <-errCh
}
