package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	provideradapter "github.com/polyask/polyask/internal/adapter/driven/provider"
	"github.com/polyask/polyask/internal/adapter/driven/session"
	sqliteadapter "github.com/polyask/polyask/internal/adapter/driven/sqlite"
	httphandler "github.com/polyask/polyask/internal/adapter/driving/http"
	webhandler "github.com/polyask/polyask/internal/adapter/driving/web"
	"github.com/polyask/polyask/internal/application"
	"github.com/polyask/polyask/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"mock_providers", cfg.MockProviders,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	localStore := sqliteadapter.NewLocalRepo(db)
	credentialStore := sqliteadapter.NewCredentialRepo(localStore, cfg.VaultPassword)
	historyStore := sqliteadapter.NewHistoryRepo(localStore)
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)

	// 6. Build the provider registry.
	registry := provideradapter.NewDefaultRegistry(cfg.MockProviders, cfg.MockDelay)
	for _, d := range registry.Descriptors() {
		slog.Info("provider registered", "id", d.ID, "available", d.Available)
	}

	// 7. Create the search service.
	searchSvc := application.NewSearchService(registry, credentialStore, historyStore, nil)

	// 8. Register API and GUI routes on a shared mux.
	mux := http.NewServeMux()

	apiHandler := httphandler.NewHandler(searchSvc, credentialStore, historyStore, registry, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler, sessions)

	renderer := webhandler.NewRenderer(webhandler.TemplateFS, slog.Default())
	webHandler := webhandler.NewHandler(
		credentialStore,
		historyStore,
		registry,
		sessions,
		renderer,
		cfg.PanelUser,
		cfg.PanelPassword,
		slog.Default(),
	)
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second, // provider calls can be slow
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("polyask started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain the HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
