// Command spendwatch runs the notification money-extraction daemon: it
// receives bridged notification events over HTTP and turns bank alerts
// into ledger transactions.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mtkohut/spendwatch/pkg/api"
	"github.com/mtkohut/spendwatch/pkg/config"
	"github.com/mtkohut/spendwatch/pkg/ledger"
	"github.com/mtkohut/spendwatch/pkg/listener"
	"github.com/mtkohut/spendwatch/pkg/logging"
	"github.com/mtkohut/spendwatch/pkg/notify"
	"github.com/mtkohut/spendwatch/pkg/server"
	"github.com/mtkohut/spendwatch/pkg/settings"
	"github.com/mtkohut/spendwatch/pkg/settings/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "spendwatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger := logging.Setup(logging.FromEnv())

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	local := cfg.LocalCurrency()
	logger.Info("configuration loaded",
		"listen_addr", cfg.ListenAddr,
		"ledger_url", cfg.LedgerURL,
		"currency", local.Code,
		"settings_backend", cfg.SettingsBackend,
	)

	ledgerClient, err := ledger.New(ledger.Config{
		BaseURL: cfg.LedgerURL,
		Token:   cfg.LedgerToken,
	}, logger.With("component", "ledger"))
	if err != nil {
		return fmt.Errorf("creating ledger client: %w", err)
	}

	store, closeStore, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating settings store: %w", err)
	}
	defer closeStore()

	l := listener.New(listener.Config{
		LocalCurrency: local,
		SelfPackage:   cfg.SelfPackage,
	}, store, ledgerClient, notify.NewLogNotifier(logger.With("component", "notify")), logger.With("component", "listener"))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(l, logger.With("component", "server")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening for notification events", "addr", cfg.ListenAddr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down server", "error", err)
		}
	}

	logger.Info("spendwatch stopped")
	return nil
}

// newStore builds the configured settings store and returns a cleanup
// function.
func newStore(cfg config.Config, logger *slog.Logger) (api.SettingsStore, func(), error) {
	switch cfg.SettingsBackend {
	case "postgres":
		store, err := postgres.New(postgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger.With("component", "settings"))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := settings.NewFileStore(cfg.SettingsFile, logger.With("component", "settings"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
