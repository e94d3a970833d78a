package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"microvault.com/internal/application/usecase"
	"microvault.com/internal/domain/entity"
	"microvault.com/internal/domain/port"
	"microvault.com/internal/infrastructure/authorizer"
	"microvault.com/internal/infrastructure/config"
	httphandler "microvault.com/internal/infrastructure/http"
	"microvault.com/internal/infrastructure/logger"
	"microvault.com/internal/infrastructure/repository"
	"microvault.com/internal/infrastructure/transfer"
)

const serverDir = "server"

var apiServerCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "server",
	Short: "Run API Server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		appLogger := logger.NewLogger()

		// Get config directory (relative to where the binary is run from)
		configDir := filepath.Join("cmd", "config", serverDir)
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			configDir = filepath.Join(".", "config", serverDir)
		}

		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger = logger.New(os.Stdout, logger.ParseLevel(cfg.Log.Level))
		appLogger.LogInfo(context.TODO(), "Configuration loaded",
			"port", cfg.Server.Port,
			"storage", cfg.Storage.Backend,
			"principals", len(cfg.Auth.Principals),
			"compensate_on_transfer_failure", cfg.Vault.CompensateOnTransferFailure)

		store, closeStore, err := openStore(cfg.Storage, appLogger)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to open store", err)
			return err
		}
		defer closeStore()

		token, err := newToken(cfg.Token, appLogger)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to seed token ledger", err)
			return err
		}

		vault := usecase.NewVault(
			store,
			authorizer.NewHMACAuthorizer(cfg.Auth.Secrets(), cfg.Auth.TimestampTolerance, appLogger),
			token,
			usecase.VaultOptions{
				Account:                     cfg.Vault.Account,
				CompensateOnTransferFailure: cfg.Vault.CompensateOnTransferFailure,
				TransferAsset:               token.Asset(),
			},
			appLogger,
		)
		vault.CheckAsset(context.TODO())

		handler := httphandler.NewHandler(vault, appLogger)

		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      handler.SetupRoutes(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Channel to capture termination signals
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		errChan := make(chan error, 1)

		go func() {
			appLogger.LogInfo(context.TODO(), "Starting server",
				"address", addr,
				"custodial_account", vault.Account())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		select {
		case <-signalChan:
			appLogger.LogInfo(context.TODO(), "Received termination signal. Initiating graceful shutdown...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.LogError(context.TODO(), "Server forced to shutdown", err)
				return err
			}

			appLogger.LogInfo(context.TODO(), "Server stopped gracefully")
		case err := <-errChan:
			appLogger.LogError(context.TODO(), "Server error", err)
			return err
		}

		return nil
	},
}

// openStore builds the configured vault store and its cleanup func
func openStore(cfg config.Storage, appLogger logger.Logger) (port.VaultStore, func(), error) {
	switch cfg.Backend {
	case config.BackendBolt:
		store, err := repository.OpenBoltStore(cfg.Path, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				appLogger.LogError(context.TODO(), "Failed to close store", err)
			}
		}, nil
	default:
		return repository.NewInMemoryStore(appLogger), func() {}, nil
	}
}

// newToken creates the in-process asset ledger with its genesis balances
func newToken(cfg config.Token, appLogger logger.Logger) (*transfer.InMemoryToken, error) {
	token := transfer.NewInMemoryToken(cfg.Asset, appLogger)

	for _, acc := range cfg.Accounts {
		amount, err := entity.ParseAmount(acc.Balance)
		if err != nil {
			return nil, fmt.Errorf("genesis balance for %s: %w", acc.Identity, err)
		}
		if err := token.Mint(context.TODO(), acc.Identity, amount); err != nil {
			return nil, fmt.Errorf("genesis balance for %s: %w", acc.Identity, err)
		}
	}

	return token, nil
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}
