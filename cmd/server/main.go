package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitpay/internal/api"
	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/config"
	"github.com/mmynk/splitpay/internal/ledger"
	"github.com/mmynk/splitpay/internal/storage/sqlite"
	"github.com/mmynk/splitpay/internal/transfer"
	"github.com/mmynk/splitpay/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var exec transfer.Executor = transfer.Noop{}
	if cfg.WalletAPIURL != "" {
		exec = transfer.NewHTTPExecutor(cfg.WalletAPIURL, cfg.WalletAPIToken)
		slog.Info("Wallet service configured", "url", cfg.WalletAPIURL)
	} else {
		slog.Warn("No wallet service configured, transfers settle via noop executor")
	}

	led := ledger.New(store, exec)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	handler := api.New(cfg, led, authenticator, jwtManager, store).Handler()

	// h2c allows HTTP/2 without TLS behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	slog.Info("Server starting", "address", cfg.Bind)
	if err := http.ListenAndServe(cfg.Bind, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
